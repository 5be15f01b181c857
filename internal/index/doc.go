// Package index provides the ordered in-memory index used for prefix search.
//
// # Tree
//
// Tree is an AVL tree mapping non-empty string keys to values of any type.
// Every mutation rebalances the path back to the root, so the tree height
// stays within 1.44*log2(n) and lookups are O(log n).
//
//	titles := index.New[[]string]()
//	_ = titles.Insert("dune", []string{"9780441013593"})
//	ids, ok := titles.Search("dune")
//	matches := titles.SearchByPrefix("du")
//
// Inserting an existing key replaces its value in place; the tree never holds
// duplicate keys.
//
// # Prefix search
//
// SearchByPrefix walks only the subtrees that can intersect the key range
// [prefix, prefix+1) and returns matches in ascending key order. The result
// is complete: every key starting with the prefix is reported.
//
// # Concurrency
//
// Tree has no internal locking. Callers that share a tree between goroutines
// must guard it themselves (the catalog store holds one mutex for all of its
// indexes).
package index
