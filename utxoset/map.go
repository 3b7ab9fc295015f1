package utxoset

import (
	"fmt"
	"math"
	"sync"

	"github.com/dolthub/swiss"
)

// genericMap is the contract the snapshot model needs from its backing map.
type genericMap[K comparable, V any] interface {
	// Put stores a value V for key K
	Put(K, V)

	// Get retrieves a value V for key K, returns (value, exists)
	Get(K) (V, bool)

	// Delete removes the entry for key K, returns true if the key existed
	Delete(K) bool

	// Iter iterates over all entries, calling cb for each.
	// If cb returns true, iteration stops
	Iter(cb func(K, V) (stop bool))

	// Exists checks if a key exists in the map
	Exists(K) bool

	// Length returns the number of entries in the map
	Length() int

	// IsEqual compares this map with another using the provided comparison function
	IsEqual(other genericMap[K, V], fn ValueCompareFn[V]) (bool, string)
}

// ValueCompareFn reports whether two values are semantically equal.
type ValueCompareFn[V any] func(V, V) bool

// hashable keys can bucket themselves into one of mod shards.
type hashable interface {
	Hash(mod uint16) uint16
}

type comparableAndHashable interface {
	comparable
	hashable
}

// splitMap shards a map across buckets to reduce lock contention. A snapshot
// holds tens of millions of entries, a single lock would serialize the loaders.
type splitMap[K comparableAndHashable, V any] struct {
	m           map[uint16]genericMap[K, V]
	nrOfBuckets uint16
}

// NewSplitSwissMap creates a sharded map backed by swiss tables. The length is
// a capacity hint for the whole map, spread evenly over the shards.
func NewSplitSwissMap[K comparableAndHashable, V any](length int) genericMap[K, V] {
	sm := &splitMap[K, V]{
		m:           make(map[uint16]genericMap[K, V], 1024),
		nrOfBuckets: 1024,
	}

	splitLength := int(math.Ceil(float64(length) / float64(sm.nrOfBuckets)))

	for i := uint16(0); i < sm.nrOfBuckets; i++ {
		sm.m[i] = newSwissMap[K, V](splitLength)
	}

	return sm
}

// NewSplitGoMap creates a sharded map backed by standard Go maps.
func NewSplitGoMap[K comparableAndHashable, V any](_ int) genericMap[K, V] {
	sm := &splitMap[K, V]{
		m:           make(map[uint16]genericMap[K, V], 1024),
		nrOfBuckets: 1024,
	}

	for i := uint16(0); i < sm.nrOfBuckets; i++ {
		sm.m[i] = NewGoMap[K, V]()
	}

	return sm
}

func (sm *splitMap[K, V]) Put(k K, v V) {
	sm.m[k.Hash(sm.nrOfBuckets)].Put(k, v)
}

func (sm *splitMap[K, V]) Get(k K) (V, bool) {
	return sm.m[k.Hash(sm.nrOfBuckets)].Get(k)
}

func (sm *splitMap[K, V]) Delete(k K) bool {
	return sm.m[k.Hash(sm.nrOfBuckets)].Delete(k)
}

func (sm *splitMap[K, V]) Iter(cb func(K, V) (stop bool)) {
	stopped := false

	wrapped := func(k K, v V) bool {
		stopped = cb(k, v)

		return stopped
	}

	for i := uint16(0); i < sm.nrOfBuckets; i++ {
		sm.m[i].Iter(wrapped)

		if stopped {
			return
		}
	}
}

func (sm *splitMap[K, V]) Exists(k K) bool {
	return sm.m[k.Hash(sm.nrOfBuckets)].Exists(k)
}

func (sm *splitMap[K, V]) Length() int {
	length := 0
	for i := uint16(0); i < sm.nrOfBuckets; i++ {
		length += sm.m[i].Length()
	}

	return length
}

func (sm *splitMap[K, V]) IsEqual(other genericMap[K, V], fn ValueCompareFn[V]) (bool, string) {
	return mapsEqual[K, V](sm, other, fn)
}

// mapsEqual is the shared equality walk: same length and every entry of m
// present and equal in other.
func mapsEqual[K comparable, V any](m, other genericMap[K, V], fn ValueCompareFn[V]) (bool, string) {
	if m.Length() != other.Length() {
		return false, fmt.Sprintf("Lengths are different: %d vs %d", m.Length(), other.Length())
	}

	different := false

	var difference string

	m.Iter(func(k K, v V) bool {
		otherV, ok := other.Get(k)
		if !ok || !fn(v, otherV) {
			different = true
			difference = fmt.Sprintf("Values are different for key %v: %v vs %v", k, v, otherV)

			return true // stop iterating
		}

		return false // continue iterating
	})

	if different {
		return false, difference
	}

	return true, ""
}

type swissMap[K comparable, V any] struct {
	mu     sync.RWMutex
	m      *swiss.Map[K, V]
	length int
}

func newSwissMap[K comparable, V any](length int) genericMap[K, V] {
	return &swissMap[K, V]{
		m: swiss.NewMap[K, V](uint32(length)),
	}
}

func (s *swissMap[K, V]) Put(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The swiss map has no length method, track it ourselves.
	if !s.m.Has(k) {
		s.length++
	}

	s.m.Put(k, v)
}

func (s *swissMap[K, V]) Get(k K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.m.Get(k)
}

func (s *swissMap[K, V]) Delete(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := s.m.Delete(k)
	if deleted {
		s.length--
	}

	return deleted
}

func (s *swissMap[K, V]) Iter(cb func(K, V) (stop bool)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.m.Iter(cb)
}

func (s *swissMap[K, V]) Exists(k K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.m.Get(k)

	return ok
}

func (s *swissMap[K, V]) Length() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.length
}

func (s *swissMap[K, V]) IsEqual(other genericMap[K, V], fn ValueCompareFn[V]) (bool, string) {
	return mapsEqual[K, V](s, other, fn)
}

type goMap[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// NewGoMap creates a plain mutex-guarded Go map.
func NewGoMap[K comparable, V any]() genericMap[K, V] {
	return &goMap[K, V]{
		m: make(map[K]V),
	}
}

func (s *goMap[K, V]) Put(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[k] = v
}

func (s *goMap[K, V]) Get(k K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[k]

	return v, ok
}

func (s *goMap[K, V]) Delete(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.m[k]
	delete(s.m, k)

	return ok
}

func (s *goMap[K, V]) Iter(cb func(K, V) (stop bool)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for k, v := range s.m {
		if cb(k, v) {
			return
		}
	}
}

func (s *goMap[K, V]) Exists(k K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.m[k]

	return ok
}

func (s *goMap[K, V]) Length() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.m)
}

func (s *goMap[K, V]) IsEqual(other genericMap[K, V], fn ValueCompareFn[V]) (bool, string) {
	return mapsEqual[K, V](s, other, fn)
}
