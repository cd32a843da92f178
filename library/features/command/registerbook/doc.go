// Package registerbook implements the Register Book use case.
//
// Registering adds a book to the shelf under its ISBN. Title and author are optional, and an ISBN
// can only be registered once. Looking up missing metadata happens before the command is built;
// this package only persists what it is given.
package registerbook
