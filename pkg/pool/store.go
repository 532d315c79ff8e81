package pool

// store holds the idle instances of every key. Each bucket is a stack: push
// appends to the tail and pop takes the tail, so the most recently returned
// instance is handed out first.
type store[T comparable] struct {
	buckets map[string][]T
	// idle maps every idle instance to the bucket holding it.
	idle map[T]string
}

func newStore[T comparable]() *store[T] {
	return &store[T]{
		buckets: make(map[string][]T),
		idle:    make(map[T]string),
	}
}

// bucketFor returns the bucket for key, creating an empty one on first access.
func (s *store[T]) bucketFor(key string) []T {
	b, ok := s.buckets[key]
	if !ok {
		b = make([]T, 0, 8)
		s.buckets[key] = b
	}
	return b
}

// has reports whether a bucket exists for key.
func (s *store[T]) has(key string) bool {
	_, ok := s.buckets[key]
	return ok
}

// push appends inst to the tail of key's bucket.
func (s *store[T]) push(key string, inst T) {
	s.buckets[key] = append(s.bucketFor(key), inst)
	s.idle[inst] = key
}

// pop removes and returns the tail of key's bucket. It never creates a bucket.
func (s *store[T]) pop(key string) (T, bool) {
	var zero T
	b := s.buckets[key]
	n := len(b)
	if n == 0 {
		return zero, false
	}
	inst := b[n-1]
	b[n-1] = zero
	s.buckets[key] = b[:n-1]
	delete(s.idle, inst)
	return inst, true
}

// holding returns the key of the bucket inst is idle in.
func (s *store[T]) holding(inst T) (string, bool) {
	key, ok := s.idle[inst]
	return key, ok
}

// size returns the number of idle instances for key.
func (s *store[T]) size(key string) int {
	return len(s.buckets[key])
}

// total returns the number of idle instances across all keys.
func (s *store[T]) total() int {
	return len(s.idle)
}
