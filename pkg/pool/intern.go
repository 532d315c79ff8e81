package pool

// keyInterner hands out one canonical copy of each key string so every map in
// the pool shares the same backing storage for a key.
type keyInterner struct {
	strings map[string]string
}

func newKeyInterner() *keyInterner {
	return &keyInterner{strings: make(map[string]string, 64)}
}

// intern returns the canonical copy of s, adding s if it is new.
func (in *keyInterner) intern(s string) string {
	if interned, ok := in.strings[s]; ok {
		return interned
	}
	in.strings[s] = s
	return s
}

// lookup returns the canonical copy of s without adding it.
func (in *keyInterner) lookup(s string) (string, bool) {
	interned, ok := in.strings[s]
	return interned, ok
}
