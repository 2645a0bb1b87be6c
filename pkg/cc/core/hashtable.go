package core

import "github.com/kefir-go/kefirgo/pkg/cc/ccerr"

// HashTable is an open-addressing hash table with linear probing, grounded
// on kefir's core hashtable: it rehashes (doubling capacity, starting from
// 4) once occupation exceeds 60% or the collision ratio exceeds 10%, rather
// than on every insert, so lookups stay close to O(1) amortized.
type HashTable[K comparable, V any] struct {
	keys       []K
	vals       []V
	occupied   []bool
	tombstoned []bool
	count      int
	collisions int
	hash       func(K) uint64
	equal      func(K, K) bool
}

const (
	initialCapacity   = 4
	occupationThresh  = 0.6
	collisionThreshR  = 0.1
)

// NewHashTable constructs an empty table using hash/equal for key ops,
// mirroring kefir's pluggable kefir_hashtable_ops.
func NewHashTable[K comparable, V any](hash func(K) uint64, equal func(K, K) bool) *HashTable[K, V] {
	return &HashTable[K, V]{
		keys:       make([]K, initialCapacity),
		vals:       make([]V, initialCapacity),
		occupied:   make([]bool, initialCapacity),
		tombstoned: make([]bool, initialCapacity),
		hash:       hash,
		equal:      equal,
	}
}

// Len reports the number of live entries.
func (h *HashTable[K, V]) Len() int { return h.count }

func (h *HashTable[K, V]) slot(k K) int {
	cap := len(h.keys)
	idx := int(h.hash(k) % uint64(cap))
	firstTombstone := -1
	for i := 0; i < cap; i++ {
		probe := (idx + i) % cap
		if !h.occupied[probe] {
			if h.tombstoned[probe] {
				if firstTombstone == -1 {
					firstTombstone = probe
				}
				continue
			}
			if firstTombstone != -1 {
				return firstTombstone
			}
			return probe
		}
		if h.equal(h.keys[probe], k) {
			return probe
		}
		h.collisions++
	}
	if firstTombstone != -1 {
		return firstTombstone
	}
	return -1
}

// Insert adds the value for k, failing with ccerr.AlreadyExists if k is
// already present rather than overwriting it.
func (h *HashTable[K, V]) Insert(k K, v V) error {
	if h.needsRehash() {
		h.rehash()
	}
	slot := h.slot(k)
	if slot == -1 {
		h.rehash()
		slot = h.slot(k)
	}
	if h.occupied[slot] && h.equal(h.keys[slot], k) {
		return ccerr.New(ccerr.AlreadyExists, "key already exists")
	}
	h.count++
	h.keys[slot] = k
	h.vals[slot] = v
	h.occupied[slot] = true
	h.tombstoned[slot] = false
	return nil
}

// insertUnique places k/v without checking for a duplicate key, for
// redistributing already-unique entries during rehash.
func (h *HashTable[K, V]) insertUnique(k K, v V) {
	slot := h.slot(k)
	if slot == -1 {
		slot = 0 // unreachable: rehash always grows capacity first
	}
	h.count++
	h.keys[slot] = k
	h.vals[slot] = v
	h.occupied[slot] = true
	h.tombstoned[slot] = false
}

// Get looks up the value for k.
func (h *HashTable[K, V]) Get(k K) (V, bool) {
	var zero V
	cap := len(h.keys)
	idx := int(h.hash(k) % uint64(cap))
	for i := 0; i < cap; i++ {
		probe := (idx + i) % cap
		if !h.occupied[probe] && !h.tombstoned[probe] {
			return zero, false
		}
		if h.occupied[probe] && h.equal(h.keys[probe], k) {
			return h.vals[probe], true
		}
	}
	return zero, false
}

// Delete removes k, tombstoning its slot for subsequent probes.
func (h *HashTable[K, V]) Delete(k K) bool {
	cap := len(h.keys)
	idx := int(h.hash(k) % uint64(cap))
	for i := 0; i < cap; i++ {
		probe := (idx + i) % cap
		if !h.occupied[probe] && !h.tombstoned[probe] {
			return false
		}
		if h.occupied[probe] && h.equal(h.keys[probe], k) {
			h.occupied[probe] = false
			h.tombstoned[probe] = true
			h.count--
			return true
		}
	}
	return false
}

func (h *HashTable[K, V]) needsRehash() bool {
	cap := len(h.keys)
	if float64(h.count+1)/float64(cap) > occupationThresh {
		return true
	}
	if cap > 0 && float64(h.collisions)/float64(cap) > collisionThreshR {
		return true
	}
	return false
}

func (h *HashTable[K, V]) rehash() {
	oldKeys, oldVals, oldOcc := h.keys, h.vals, h.occupied
	newCap := len(h.keys) * 2
	h.keys = make([]K, newCap)
	h.vals = make([]V, newCap)
	h.occupied = make([]bool, newCap)
	h.tombstoned = make([]bool, newCap)
	h.count = 0
	h.collisions = 0
	for i, occ := range oldOcc {
		if occ {
			h.insertUnique(oldKeys[i], oldVals[i])
		}
	}
}

// Iterate calls fn for every live entry in unspecified order.
func (h *HashTable[K, V]) Iterate(fn func(K, V)) {
	for i, occ := range h.occupied {
		if occ {
			fn(h.keys[i], h.vals[i])
		}
	}
}

// SplitMix64 is the hash kefir's hashtable uses for its built-in integer
// key ops; exposed so callers keying on uint64/int identifiers get a
// well-mixed hash without writing their own.
func SplitMix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
