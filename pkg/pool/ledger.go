package pool

// ledger records which key every borrowed instance was borrowed under.
type ledger[T comparable] struct {
	active map[T]string
	perKey map[string]int
}

func newLedger[T comparable]() *ledger[T] {
	return &ledger[T]{
		active: make(map[T]string),
		perKey: make(map[string]int),
	}
}

// record associates inst with key. If inst was already recorded the old
// association is overwritten and replaced is true.
func (l *ledger[T]) record(inst T, key string) (replaced bool) {
	if prev, ok := l.active[inst]; ok {
		l.perKey[prev]--
		replaced = true
	}
	l.active[inst] = key
	l.perKey[key]++
	return replaced
}

func (l *ledger[T]) lookup(inst T) (string, bool) {
	key, ok := l.active[inst]
	return key, ok
}

// erase removes inst. Erasing an unknown instance is a no-op.
func (l *ledger[T]) erase(inst T) {
	key, ok := l.active[inst]
	if !ok {
		return
	}
	delete(l.active, inst)
	l.perKey[key]--
}

func (l *ledger[T]) count(key string) int {
	return l.perKey[key]
}

func (l *ledger[T]) len() int {
	return len(l.active)
}
