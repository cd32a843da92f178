// Package deskapi serves the desk operations as a JSON HTTP API.
//
// It is the view layer: it renders recent books, availability and overdue loans, and
// forwards registrations, loans and returns to the desk service. Business rule violations
// are reported as {"error": {"kind": ..., "message": ...}} with a status per kind.
//
// Registration endpoints sit behind a 4-digit PIN sent in the X-Desk-PIN header.
// The PIN keeps casual hands off the admin screens. It is not a security control.
package deskapi
