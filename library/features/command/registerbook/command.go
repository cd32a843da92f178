package registerbook

import (
	"strings"
	"time"

	"github.com/AntonStoeckl/library-desk-go/library/core"
)

const (
	commandType = "RegisterBook"
)

// Command represents the intent to register a book.
type Command struct {
	ISBN         core.ISBNString
	Title        string
	Author       string
	RegisteredAt core.Timestamp
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command. Surrounding whitespace is removed from all text fields.
func BuildCommand(isbn, title, author string, registeredAt time.Time) Command {
	return Command{
		ISBN:         core.NormalizeInput(isbn),
		Title:        strings.TrimSpace(title),
		Author:       strings.TrimSpace(author),
		RegisteredAt: core.ToTimestamp(registeredAt),
	}
}
