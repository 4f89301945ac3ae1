// Package syncmap is a typed sync.Map.
package syncmap

import "sync"

// SyncMap is safe for concurrent use. The zero value is not usable; use New.
type SyncMap[K comparable, V any] struct {
	m *sync.Map
}

func New[K comparable, V any]() SyncMap[K, V] {
	return SyncMap[K, V]{
		m: &sync.Map{},
	}
}

func (sm SyncMap[K, V]) Set(key K, value V) {
	sm.m.Store(key, value)
}

func (sm SyncMap[K, V]) Lookup(key K) (value V, ok bool) {
	v, has := sm.m.Load(key)
	if !has {
		return value, false
	}
	return v.(V), true
}

// LoadOrStore returns the value already stored for key, or stores and
// returns value.
func (sm SyncMap[K, V]) LoadOrStore(key K, value V) V {
	v, _ := sm.m.LoadOrStore(key, value)
	return v.(V)
}

func (sm SyncMap[K, V]) Len() int {
	n := 0
	sm.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
