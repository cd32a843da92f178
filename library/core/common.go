package core

import (
	"strings"
	"time"
)

// Instead of implementing full value objects, I'm using some alias types and helper methods here ...

// ISBNString represents an ISBN. No checksum validation is performed.
type ISBNString = string

// StudentIDString represents a key in the external student directory.
type StudentIDString = string

// LoanIDString represents a loan identifier.
type LoanIDString = string

// Timestamp represents a point in time as it is persisted.
type Timestamp = time.Time

// LoanPeriod is the fixed time a student may keep a book.
const LoanPeriod = 14 * 24 * time.Hour

// ToTimestamp converts a time to Timestamp with UTC normalization and millisecond precision.
// Millisecond precision is what the persisted form keeps, so converted values survive a round-trip unchanged.
func ToTimestamp(t time.Time) Timestamp {
	return t.UTC().Truncate(time.Millisecond)
}

// NormalizeInput trims surrounding whitespace from user input like scanned ISBNs and student IDs.
func NormalizeInput(s string) string {
	return strings.TrimSpace(s)
}
