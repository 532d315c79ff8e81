package prototypes

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ajitpratap0/stockpile/pkg/config"
	"github.com/ajitpratap0/stockpile/pkg/errors"
	"github.com/ajitpratap0/stockpile/pkg/pool"
)

// Default sizes used when an entry leaves Size at zero.
const (
	DefaultBufferSize = 64
	DefaultRecordSize = 8
)

// Prototype spawns Objects of one kind and size.
type Prototype struct {
	kind    Kind
	size    int
	nextID  atomic.Uint64
	spawned atomic.Int64
}

var _ pool.Prototype[*Object] = (*Prototype)(nil)

// New returns a prototype for kind. A zero size selects the kind's default.
func New(kind Kind, size int) (*Prototype, error) {
	if size < 0 {
		return nil, errors.Newf(errors.ErrorTypeConfig, "prototype %s: size cannot be negative", kind)
	}
	switch kind {
	case KindBuffer:
		if size == 0 {
			size = DefaultBufferSize
		}
	case KindRecord:
		if size == 0 {
			size = DefaultRecordSize
		}
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown prototype kind %q", kind)
	}
	return &Prototype{kind: kind, size: size}, nil
}

// Name returns "<kind>-<size>", e.g. "buffer-256".
func (p *Prototype) Name() string {
	return fmt.Sprintf("%s-%d", p.kind, p.size)
}

// Kind returns the kind of object p spawns.
func (p *Prototype) Kind() Kind { return p.kind }

// Size returns the effective capacity.
func (p *Prototype) Size() int { return p.size }

// Spawned returns how many objects p has created.
func (p *Prototype) Spawned() int64 { return p.spawned.Load() }

// Spawn creates a switched-off object.
func (p *Prototype) Spawn() *Object {
	p.spawned.Add(1)
	obj := &Object{
		ID:     p.nextID.Add(1),
		Kind:   p.kind,
		Origin: p.Name(),
	}
	switch p.kind {
	case KindBuffer:
		obj.Buffer = make([]byte, 0, p.size)
	case KindRecord:
		obj.Fields = make(map[string]any, p.size)
	}
	return obj
}

// Entry describes p as a configuration entry with an empty key.
func (p *Prototype) Entry() config.EntryConfig {
	return config.EntryConfig{Prototype: string(p.kind), Size: p.size}
}

// Library resolves configuration entries to prototypes. Entries with the same
// kind and effective size resolve to the same prototype, so a repeated entry
// in a catalog is recognized as a duplicate.
type Library struct {
	mu     sync.Mutex
	protos map[string]*Prototype
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{protos: make(map[string]*Prototype)}
}

// Resolve returns the prototype for e. An entry without a prototype kind
// resolves to nil so the catalog drops it.
func (l *Library) Resolve(e config.EntryConfig) (pool.Prototype[*Object], error) {
	if e.Prototype == "" {
		return nil, nil
	}
	p, err := New(Kind(e.Prototype), e.Size)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "resolve entry "+e.Key)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.protos[p.Name()]; ok {
		return existing, nil
	}
	l.protos[p.Name()] = p
	return p, nil
}

// Describe converts a prototype back into a configuration entry. Prototypes
// not created by this package are described by name only.
func (l *Library) Describe(proto pool.Prototype[*Object]) config.EntryConfig {
	if p, ok := proto.(*Prototype); ok {
		return p.Entry()
	}
	return config.EntryConfig{Prototype: proto.Name()}
}

// Len returns the number of distinct prototypes resolved so far.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.protos)
}
