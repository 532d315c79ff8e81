package catalog

import (
	"fmt"

	"github.com/ajitpratap0/stockpile/pkg/config"
	"github.com/ajitpratap0/stockpile/pkg/pool"
)

// ResolveFunc maps a configuration entry to a prototype. A nil prototype with
// a nil error marks an entry without a prototype.
type ResolveFunc[T comparable] func(config.EntryConfig) (pool.Prototype[T], error)

// DescribeFunc maps a prototype back to a configuration entry.
type DescribeFunc[T comparable] func(pool.Prototype[T]) config.EntryConfig

// FromConfig builds an unsorted tree from configuration categories. Entries
// that resolve to no prototype are kept so Sort can report them.
func FromConfig[T comparable](cats []config.CategoryConfig, resolve ResolveFunc[T]) (Tree[T], error) {
	tree := make(Tree[T], 0, len(cats))
	for _, c := range cats {
		cat := Category[T]{Key: c.Key, Entries: make([]Entry[T], 0, len(c.Entries))}
		for i, e := range c.Entries {
			proto, err := resolve(e)
			if err != nil {
				return nil, fmt.Errorf("category %q entry %d: %w", c.Key, i, err)
			}
			cat.Entries = append(cat.Entries, Entry[T]{Key: e.Key, Prototype: proto})
		}
		tree = append(tree, cat)
	}
	return tree, nil
}

// ToConfig converts t back into configuration categories. Entry keys are
// written out explicitly.
func (t Tree[T]) ToConfig(describe DescribeFunc[T]) []config.CategoryConfig {
	cats := make([]config.CategoryConfig, 0, len(t))
	for _, cat := range t {
		c := config.CategoryConfig{Key: cat.Key, Entries: make([]config.EntryConfig, 0, len(cat.Entries))}
		for _, e := range cat.Entries {
			var ec config.EntryConfig
			if !pool.IsNil(e.Prototype) {
				ec = describe(e.Prototype)
			}
			ec.Key = e.Key
			c.Entries = append(c.Entries, ec)
		}
		cats = append(cats, c)
	}
	return cats
}
