package index

import (
	"errors"
	"iter"
	"strings"
)

// ErrInvalidKey is returned when an empty key is inserted.
var ErrInvalidKey = errors.New("index key must not be empty")

// Entry is a key/value pair produced by ordered traversals.
type Entry[V any] struct {
	Key   string
	Value V
}

type node[V any] struct {
	key    string
	value  V
	left   *node[V]
	right  *node[V]
	height int
}

// Tree is a self-balancing (AVL) ordered map from string keys to values.
type Tree[V any] struct {
	root *node[V]
	size int
}

// New creates an empty tree.
func New[V any]() *Tree[V] {
	return &Tree[V]{}
}

// Len returns the number of keys in the tree.
func (t *Tree[V]) Len() int {
	return t.size
}

// Height returns the height of the root (0 for an empty tree).
func (t *Tree[V]) Height() int {
	return height(t.root)
}

// Insert stores value under key, replacing the value if the key exists.
func (t *Tree[V]) Insert(key string, value V) error {
	if key == "" {
		return ErrInvalidKey
	}
	var inserted bool
	t.root = insert(t.root, key, value, &inserted)
	if inserted {
		t.size++
	}
	return nil
}

// Search returns the value stored under key.
func (t *Tree[V]) Search(key string) (V, bool) {
	n := t.root
	for n != nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return n.value, true
		}
	}
	var zero V
	return zero, false
}

// SearchByPrefix returns the values of all keys starting with prefix, in
// ascending key order. An empty prefix yields an empty result.
func (t *Tree[V]) SearchByPrefix(prefix string) []V {
	entries := t.PrefixEntries(prefix)
	values := make([]V, 0, len(entries))
	for _, e := range entries {
		values = append(values, e.Value)
	}
	return values
}

// PrefixEntries is SearchByPrefix with the matching keys included.
func (t *Tree[V]) PrefixEntries(prefix string) []Entry[V] {
	out := []Entry[V]{}
	if prefix == "" {
		return out
	}
	collectPrefix(t.root, prefix, &out)
	return out
}

// Delete removes key from the tree. It reports whether the key was present.
func (t *Tree[V]) Delete(key string) bool {
	var removed bool
	t.root = remove(t.root, key, &removed)
	if removed {
		t.size--
	}
	return removed
}

// InOrder returns all entries in ascending key order.
func (t *Tree[V]) InOrder() []Entry[V] {
	out := make([]Entry[V], 0, t.size)
	for k, v := range t.Ascend() {
		out = append(out, Entry[V]{Key: k, Value: v})
	}
	return out
}

// Ascend iterates over the tree in ascending key order. The sequence can be
// ranged over any number of times.
func (t *Tree[V]) Ascend() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		ascend(t.root, yield)
	}
}

func ascend[V any](n *node[V], yield func(string, V) bool) bool {
	if n == nil {
		return true
	}
	return ascend(n.left, yield) && yield(n.key, n.value) && ascend(n.right, yield)
}

// collectPrefix visits a subtree only if it can hold keys in the prefix range.
// Keys starting with prefix are contiguous in key order: they are >= prefix,
// and any key >= prefix that does not start with it sorts after all of them.
func collectPrefix[V any](n *node[V], prefix string, out *[]Entry[V]) {
	if n == nil {
		return
	}
	matches := strings.HasPrefix(n.key, prefix)
	if prefix < n.key {
		collectPrefix(n.left, prefix, out)
	}
	if matches {
		*out = append(*out, Entry[V]{Key: n.key, Value: n.value})
	}
	if matches || n.key < prefix {
		collectPrefix(n.right, prefix, out)
	}
}

func insert[V any](n *node[V], key string, value V, inserted *bool) *node[V] {
	if n == nil {
		*inserted = true
		return &node[V]{key: key, value: value, height: 1}
	}

	switch {
	case key < n.key:
		n.left = insert(n.left, key, value, inserted)
	case key > n.key:
		n.right = insert(n.right, key, value, inserted)
	default:
		n.value = value
		return n
	}

	updateHeight(n)
	bf := balanceFactor(n)

	switch {
	case bf > 1 && key < n.left.key: // left-left
		return rotateRight(n)
	case bf < -1 && key > n.right.key: // right-right
		return rotateLeft(n)
	case bf > 1 && key > n.left.key: // left-right
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	case bf < -1 && key < n.right.key: // right-left
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}
	return n
}

func remove[V any](n *node[V], key string, removed *bool) *node[V] {
	if n == nil {
		return nil
	}

	switch {
	case key < n.key:
		n.left = remove(n.left, key, removed)
	case key > n.key:
		n.right = remove(n.right, key, removed)
	default:
		*removed = true
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		successor := minNode(n.right)
		n.key, n.value = successor.key, successor.value
		var ignored bool
		n.right = remove(n.right, successor.key, &ignored)
	}

	return rebalance(n)
}

func rebalance[V any](n *node[V]) *node[V] {
	updateHeight(n)
	bf := balanceFactor(n)

	switch {
	case bf > 1 && balanceFactor(n.left) >= 0:
		return rotateRight(n)
	case bf > 1:
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	case bf < -1 && balanceFactor(n.right) <= 0:
		return rotateLeft(n)
	case bf < -1:
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}
	return n
}

func minNode[V any](n *node[V]) *node[V] {
	for n.left != nil {
		n = n.left
	}
	return n
}

func rotateLeft[V any](z *node[V]) *node[V] {
	y := z.right
	z.right = y.left
	y.left = z
	updateHeight(z)
	updateHeight(y)
	return y
}

func rotateRight[V any](z *node[V]) *node[V] {
	y := z.left
	z.left = y.right
	y.right = z
	updateHeight(z)
	updateHeight(y)
	return y
}

func height[V any](n *node[V]) int {
	if n == nil {
		return 0
	}
	return n.height
}

func balanceFactor[V any](n *node[V]) int {
	if n == nil {
		return 0
	}
	return height(n.left) - height(n.right)
}

func updateHeight[V any](n *node[V]) {
	n.height = 1 + max(height(n.left), height(n.right))
}
