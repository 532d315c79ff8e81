// Package catalog turns a user-facing tree of prototype categories into the
// flat manifest a pool is configured from.
//
// The tree is what people edit: categories group related prototypes and an
// entry key may be left empty. Sort cleans and orders it; Build also flattens
// it into a pool.Manifest, skipping duplicated entries.
package catalog

import (
	"reflect"
	"sort"

	"go.uber.org/zap"

	"github.com/ajitpratap0/stockpile/pkg/pool"
)

// Entry binds a key to a prototype inside a category. An empty key defaults
// to the prototype's name.
type Entry[T comparable] struct {
	Key       string
	Prototype pool.Prototype[T]
}

// Category groups entries under a category key.
type Category[T comparable] struct {
	Key     string
	Entries []Entry[T]
}

// Tree is an ordered list of categories.
type Tree[T comparable] []Category[T]

// Report counts what Sort and Build changed.
type Report struct {
	DroppedCategories int `json:"dropped_categories"`
	DroppedEntries    int `json:"dropped_entries"`
	DefaultedKeys     int `json:"defaulted_keys"`
	Duplicates        int `json:"duplicates"`
	Bindings          int `json:"bindings"`
}

// Sort returns a cleaned copy of t: entries without a prototype are dropped,
// empty entry keys default to the prototype name, categories left without
// entries are dropped, and both entries and categories are ordered by key.
// t itself is not modified.
func (t Tree[T]) Sort(log *zap.Logger) (Tree[T], Report) {
	if log == nil {
		log = zap.NewNop()
	}
	var rep Report

	out := make(Tree[T], 0, len(t))
	for _, cat := range t {
		entries := make([]Entry[T], 0, len(cat.Entries))
		for _, e := range cat.Entries {
			if pool.IsNil(e.Prototype) {
				log.Info("dropping entry without prototype",
					zap.String("category", cat.Key),
					zap.String("key", e.Key))
				rep.DroppedEntries++
				continue
			}
			if e.Key == "" {
				e.Key = e.Prototype.Name()
				rep.DefaultedKeys++
			}
			entries = append(entries, e)
		}
		if len(entries) == 0 {
			log.Info("dropping empty category", zap.String("category", cat.Key))
			rep.DroppedCategories++
			continue
		}
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
		out = append(out, Category[T]{Key: cat.Key, Entries: entries})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out, rep
}

// Build sorts t and flattens it into a built manifest. An entry whose key and
// prototype both match an entry already emitted is skipped with a warning.
// Entries that share a key but not a prototype are kept; the pool resolves
// them last-write-wins.
func (t Tree[T]) Build(log *zap.Logger) (*pool.Manifest[T], Report) {
	if log == nil {
		log = zap.NewNop()
	}
	sorted, rep := t.Sort(log)

	seen := make(map[string][]pool.Prototype[T])
	var bindings []pool.Binding[T]
	for _, cat := range sorted {
		for _, e := range cat.Entries {
			if containsIdentity(seen[e.Key], e.Prototype) {
				log.Warn("duplicated prototype in catalog",
					zap.String("category", cat.Key),
					zap.String("key", e.Key),
					zap.String("prototype", e.Prototype.Name()))
				rep.Duplicates++
				continue
			}
			seen[e.Key] = append(seen[e.Key], e.Prototype)
			bindings = append(bindings, pool.Binding[T]{Key: e.Key, Prototype: e.Prototype})
		}
	}
	rep.Bindings = len(bindings)

	log.Debug("catalog built",
		zap.Int("categories", len(sorted)),
		zap.Int("bindings", rep.Bindings),
		zap.Int("duplicates", rep.Duplicates))
	return pool.NewManifest(bindings...), rep
}

// Keys returns the category keys in tree order.
func (t Tree[T]) Keys() []string {
	keys := make([]string, len(t))
	for i, cat := range t {
		keys[i] = cat.Key
	}
	return keys
}

func containsIdentity[T comparable](protos []pool.Prototype[T], p pool.Prototype[T]) bool {
	for _, q := range protos {
		if sameIdentity(q, p) {
			return true
		}
	}
	return false
}

// sameIdentity compares a and b with ==, treating values of non-comparable
// dynamic types as distinct instead of panicking.
func sameIdentity(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}
