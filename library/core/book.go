package core

// Book is a registered title on the shelf, keyed by its ISBN.
type Book struct {
	ISBN         ISBNString
	Title        string
	Author       string
	RegisteredAt Timestamp
}

// Books is the registered books in insertion order.
type Books []Book

// BuildBook creates a Book with a normalized registration timestamp.
func BuildBook(isbn ISBNString, title, author string, registeredAt Timestamp) Book {
	return Book{
		ISBN:         isbn,
		Title:        title,
		Author:       author,
		RegisteredAt: ToTimestamp(registeredAt),
	}
}

// Find returns the first book registered with isbn.
func (b Books) Find(isbn ISBNString) (Book, bool) {
	for _, book := range b {
		if book.ISBN == isbn {
			return book, true
		}
	}

	return Book{}, false
}

// Contains reports whether a book with isbn is registered.
func (b Books) Contains(isbn ISBNString) bool {
	_, found := b.Find(isbn)

	return found
}

// TitleOf returns the title of the book registered with isbn, or "" if it is unknown or untitled.
func (b Books) TitleOf(isbn ISBNString) string {
	book, _ := b.Find(isbn)

	return book.Title
}
