package returnbook

import (
	"time"

	"github.com/AntonStoeckl/library-desk-go/library/core"
)

const (
	commandType = "ReturnBook"
)

// Command represents the intent to take a lent book back.
type Command struct {
	ISBN       core.ISBNString
	ReturnedAt core.Timestamp
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(isbn string, returnedAt time.Time) Command {
	return Command{
		ISBN:       core.NormalizeInput(isbn),
		ReturnedAt: core.ToTimestamp(returnedAt),
	}
}
