package lendbook

import (
	"time"

	"github.com/AntonStoeckl/library-desk-go/library/core"
)

const (
	commandType = "LendBook"
)

// Command represents the intent to lend a book to a student.
type Command struct {
	ISBN    core.ISBNString
	Student core.StudentIDString
	LoanID  core.LoanIDString
	LentAt  core.Timestamp
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command from scanned input. Surrounding whitespace is removed.
func BuildCommand(isbn string, student string, loanID core.LoanIDString, lentAt time.Time) Command {
	return Command{
		ISBN:    core.NormalizeInput(isbn),
		Student: core.NormalizeInput(student),
		LoanID:  loanID,
		LentAt:  core.ToTimestamp(lentAt),
	}
}
