// Package catalog holds the in-memory library catalog: primary tables for
// books, members, loans, authors and genres, and the secondary indexes that
// make them searchable by prefix.
//
// # Indexes
//
// Every searchable attribute has two structures kept in sync by a maintainer:
//
//   - a dictionary mapping the normalized value to the sorted ids sharing it
//   - an index.Tree keyed by the same normalized value
//
// Prefix queries use the tree to find candidate keys and the dictionary to
// confirm which ids currently hold each key. Results are then dereferenced
// against the primary tables; ids that no longer resolve are dropped.
//
// Unique attributes (ISBN, email) keep no dictionary: the primary table is
// authoritative and the tree stores the single id.
//
// # Errors
//
// Operations return *ValidationError for malformed input and wrap
// ErrNotFound, ErrDuplicateKey, ErrConflict or ErrAlreadyReturned for
// business-rule failures. Use errors.Is / errors.As to classify them.
//
// # Concurrency
//
// Store serializes access with a single RWMutex; the trees themselves are
// not synchronized.
package catalog
