package pool

// registry maps keys to prototypes. Entries are never removed.
type registry[T comparable] struct {
	protos map[string]Prototype[T]
}

func newRegistry[T comparable]() *registry[T] {
	return &registry[T]{protos: make(map[string]Prototype[T])}
}

// register binds key to proto and reports whether an earlier binding was
// overwritten.
func (r *registry[T]) register(key string, proto Prototype[T]) (replaced bool) {
	_, replaced = r.protos[key]
	r.protos[key] = proto
	return replaced
}

func (r *registry[T]) resolve(key string) (Prototype[T], bool) {
	proto, ok := r.protos[key]
	return proto, ok
}

func (r *registry[T]) len() int {
	return len(r.protos)
}
