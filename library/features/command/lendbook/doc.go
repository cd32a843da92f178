// Package lendbook implements the Lend Book use case.
//
// A registered book without an active loan can be lent to a student. The student ID is a key
// of the external student directory and does not have to exist there.
// It follows the Load-Decide-Save pattern with proper separation between
// infrastructure concerns (CommandHandler) and pure business logic (Decide function).
package lendbook
