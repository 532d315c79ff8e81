package pool

import "reflect"

// Prototype is the immutable spawn source bound to one key. It is never
// borrowed itself.
type Prototype[T comparable] interface {
	// Name identifies the prototype; catalogs use it as the default key.
	Name() string
	// Spawn creates a fresh instance.
	Spawn() T
}

// Activator is implemented by instances that track whether they are in use.
// The pool calls SetActive(true) on borrow and, when deactivation on return is
// enabled, SetActive(false) on return.
type Activator interface {
	SetActive(active bool)
}

// FuncPrototype adapts a spawn function to the Prototype interface.
type FuncPrototype[T comparable] struct {
	name  string
	spawn func() T
}

// NewPrototype returns a prototype named name that spawns with fn. A nil fn
// yields a prototype Configure rejects.
func NewPrototype[T comparable](name string, fn func() T) *FuncPrototype[T] {
	return &FuncPrototype[T]{name: name, spawn: fn}
}

// Name implements Prototype.
func (p *FuncPrototype[T]) Name() string { return p.name }

// Spawn implements Prototype.
func (p *FuncPrototype[T]) Spawn() T {
	if p == nil || p.spawn == nil {
		var zero T
		return zero
	}
	return p.spawn()
}

// IsNil reports whether v is nil or an interface holding a nil pointer, map,
// slice, func or chan.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// usable reports whether proto can spawn: it is not a nil value and, for a
// FuncPrototype, has a spawn function.
func usable[T comparable](proto Prototype[T]) bool {
	if IsNil(proto) {
		return false
	}
	if fp, ok := proto.(*FuncPrototype[T]); ok && fp.spawn == nil {
		return false
	}
	return true
}

// Binding ties a key to its prototype.
type Binding[T comparable] struct {
	Key       string
	Prototype Prototype[T]
}

// Manifest is the flattened binding list a pool is configured from. Only
// NewManifest produces a built manifest; the zero value is rejected by
// Configure.
type Manifest[T comparable] struct {
	bindings []Binding[T]
	built    bool
}

// NewManifest returns a built manifest holding a copy of bindings.
func NewManifest[T comparable](bindings ...Binding[T]) *Manifest[T] {
	return &Manifest[T]{
		bindings: append([]Binding[T](nil), bindings...),
		built:    true,
	}
}

// Bindings returns a copy of the manifest's bindings in order.
func (m *Manifest[T]) Bindings() []Binding[T] {
	if m == nil {
		return nil
	}
	return append([]Binding[T](nil), m.bindings...)
}

// Len returns the number of bindings.
func (m *Manifest[T]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.bindings)
}

// Built reports whether the manifest came from NewManifest.
func (m *Manifest[T]) Built() bool {
	return m != nil && m.built
}
