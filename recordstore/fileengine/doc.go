// Package fileengine provides a recordstore engine that keeps every key as one JSON file
// inside a local directory: the key "books" lives in "<dir>/books.json".
//
// This is the desk's default profile and the closest thing to the browser-local storage
// the desk grew out of: the data belongs to one machine and one operator.
//
// Writes go to a temporary file in the same directory, are synced, and then renamed over the
// target, so readers see either the old or the new document, never a half-written one.
//
// Revisions are derived from the file content (64-bit FNV-1a), so a document changed by
// another process or by hand is detected as a concurrency conflict on the next Save.
package fileengine
