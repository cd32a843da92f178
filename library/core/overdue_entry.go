package core

// OverdueEntry is one line of the overdue list.
// Title is resolved from the registered books and stays empty when the book is unknown.
type OverdueEntry struct {
	ISBN    ISBNString
	Student StudentIDString
	Title   string
	DueAt   Timestamp
}

// OverdueEntries is the overdue list in loan insertion order.
type OverdueEntries []OverdueEntry
