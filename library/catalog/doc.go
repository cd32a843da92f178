// Package catalog looks up bibliographic metadata for an ISBN over HTTP.
//
// Lookups are best effort. Network errors, non-2xx responses and payloads without a title
// all yield "no result" instead of an error, because callers treat missing metadata as a
// normal outcome. Outbound calls are rate limited and successful results are cached.
//
// Two response shapes are understood: a flat object {"title": ..., "authors": [...]}
// (or "author": "...") and the Google Books volumes shape {"items": [{"volumeInfo": {...}}]}.
package catalog
