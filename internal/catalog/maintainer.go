package catalog

import (
	"fmt"
	"slices"

	"github.com/mrlokans/librarian/internal/index"
)

// fields maps an attribute name to the raw value an entity holds for it.
type fields map[string]string

// attribute is one searchable attribute of an entity type. The tree value for
// a key is the full sorted id set of the bucket under that key.
type attribute struct {
	name      string
	unique    bool
	normalize func(string) string

	// buckets is nil for unique attributes; the primary table is authoritative.
	buckets map[string][]string
	tree    *index.Tree[[]string]
}

type attributeSpec struct {
	name      string
	unique    bool
	normalize func(string) string
}

// maintainer keeps every indexed attribute of one entity type in sync with
// the primary table.
type maintainer struct {
	entity string
	attrs  []*attribute
}

func newMaintainer(entity string, specs ...attributeSpec) *maintainer {
	m := &maintainer{entity: entity}
	for _, s := range specs {
		a := &attribute{name: s.name, unique: s.unique, normalize: s.normalize}
		a.reset()
		m.attrs = append(m.attrs, a)
	}
	return m
}

func (m *maintainer) attribute(name string) (*attribute, bool) {
	for _, a := range m.attrs {
		if a.name == name {
			return a, true
		}
	}
	return nil, false
}

func (m *maintainer) onCreate(id string, values fields) {
	for _, a := range m.attrs {
		a.add(id, a.normalize(values[a.name]))
	}
}

// onUpdate re-keys only the attributes whose normalized value changed.
func (m *maintainer) onUpdate(id string, old, updated fields) {
	for _, a := range m.attrs {
		oldKey, newKey := a.normalize(old[a.name]), a.normalize(updated[a.name])
		if oldKey == newKey {
			continue
		}
		a.remove(id, oldKey)
		a.add(id, newKey)
	}
}

func (m *maintainer) onDelete(id string, values fields) {
	for _, a := range m.attrs {
		a.remove(id, a.normalize(values[a.name]))
	}
}

func (m *maintainer) reset() {
	for _, a := range m.attrs {
		a.reset()
	}
}

func (a *attribute) reset() {
	a.tree = index.New[[]string]()
	a.buckets = nil
	if !a.unique {
		a.buckets = make(map[string][]string)
	}
}

func (a *attribute) add(id, key string) {
	if key == "" {
		return
	}
	if a.unique {
		a.store(key, []string{id})
		return
	}
	bucket := a.buckets[key]
	pos, found := slices.BinarySearch(bucket, id)
	if found {
		return
	}
	bucket = slices.Insert(bucket, pos, id)
	a.buckets[key] = bucket
	a.store(key, slices.Clone(bucket))
}

func (a *attribute) remove(id, key string) {
	if key == "" {
		return
	}
	if a.unique {
		a.tree.Delete(key)
		return
	}
	bucket := a.buckets[key]
	pos, found := slices.BinarySearch(bucket, id)
	if !found {
		return
	}
	bucket = slices.Delete(bucket, pos, pos+1)
	if len(bucket) == 0 {
		delete(a.buckets, key)
		a.tree.Delete(key)
		return
	}
	a.buckets[key] = bucket
	a.store(key, slices.Clone(bucket))
}

// store writes the id set under key. The key is never empty here, so an
// insert failure means the index itself is broken.
func (a *attribute) store(key string, ids []string) {
	if err := a.tree.Insert(key, ids); err != nil {
		panic(fmt.Sprintf("catalog: index %s rejected key %q: %v", a.name, key, err))
	}
}

// lookupPrefix returns the sorted, deduplicated ids whose normalized value
// starts with the normalized prefix. The tree narrows the candidate keys and
// the dictionary confirms which ids currently hold each of them.
func (a *attribute) lookupPrefix(prefix string) []string {
	key := a.normalize(prefix)
	if key == "" {
		return []string{}
	}
	var ids []string
	for _, e := range a.tree.PrefixEntries(key) {
		if a.unique {
			ids = append(ids, e.Value...)
			continue
		}
		ids = append(ids, a.buckets[e.Key]...)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// lookupExact returns the ids stored under the normalized value.
func (a *attribute) lookupExact(value string) []string {
	key := a.normalize(value)
	if key == "" {
		return []string{}
	}
	if !a.unique {
		return slices.Clone(a.buckets[key])
	}
	ids, ok := a.tree.Search(key)
	if !ok {
		return []string{}
	}
	return slices.Clone(ids)
}
