package core

// StringPool interns strings to small dense ids, backing the IR module's
// identifier and literal tables.
type StringPool struct {
	ids     *HashTable[string, int]
	strings []string
}

// StringID is a dense identifier into a StringPool.
type StringID int

// NewStringPool creates an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{
		ids: NewHashTable[string, int](fnv1a, func(a, b string) bool { return a == b }),
	}
}

// Intern returns the id for s, allocating a new one if s hasn't been seen.
func (p *StringPool) Intern(s string) StringID {
	if id, ok := p.ids.Get(s); ok {
		return StringID(id)
	}
	id := len(p.strings)
	p.strings = append(p.strings, s)
	p.ids.Insert(s, id)
	return StringID(id)
}

// String resolves an id back to its text.
func (p *StringPool) String(id StringID) string {
	if int(id) < 0 || int(id) >= len(p.strings) {
		return ""
	}
	return p.strings[id]
}

// Len reports how many distinct strings have been interned.
func (p *StringPool) Len() int { return len(p.strings) }

func fnv1a(s string) uint64 {
	var h uint64 = 0xcbf29ce484222325
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 0x100000001b3
	}
	return h
}
