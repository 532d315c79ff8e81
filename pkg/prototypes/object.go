// Package prototypes provides the concrete instance type used by the stockpile
// CLI and soak runner, and the library that maps catalog entries from a
// configuration file to prototypes.
package prototypes

// Kind identifies what a prototype spawns.
type Kind string

const (
	// KindBuffer spawns objects carrying a byte buffer of Size capacity.
	KindBuffer Kind = "buffer"
	// KindRecord spawns objects carrying a field map sized for Size fields.
	KindRecord Kind = "record"
)

// Object is a poolable instance. The pool switches it on when it is borrowed
// and, unless deactivation is disabled, off when it is returned.
type Object struct {
	// ID is unique per prototype and never reused
	ID uint64
	// Kind and Origin describe the prototype the object was spawned from
	Kind   Kind
	Origin string

	Buffer []byte
	Fields map[string]any

	active     bool
	generation uint64
}

// SetActive implements pool.Activator. Switching an object off clears its
// buffer and fields so the next borrower starts from an empty object.
func (o *Object) SetActive(active bool) {
	if active && !o.active {
		o.generation++
	}
	o.active = active
	if !active {
		o.Reset()
	}
}

// Active reports whether the object is switched on.
func (o *Object) Active() bool { return o.active }

// Generation counts how many times the object has been switched on.
func (o *Object) Generation() uint64 { return o.generation }

// Reset empties the buffer and fields, keeping their capacity.
func (o *Object) Reset() {
	o.Buffer = o.Buffer[:0]
	for k := range o.Fields {
		delete(o.Fields, k)
	}
}
