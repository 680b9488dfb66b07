package utils

import (
	"errors"
	"sync"
)

var (
	ErrKeyBusy        = errors.New("key is busy")
	ErrMaxKeysReached = errors.New("max size reached")
)

// KeyGate admits at most one holder per key. Unlike a mutex it never blocks:
// a second TryAcquire on a held key fails with ErrKeyBusy.
type KeyGate struct {
	mu      sync.Mutex
	held    map[string]struct{}
	maxSize int
}

func NewKeyGate(maxSize int) *KeyGate {
	return &KeyGate{
		held:    make(map[string]struct{}),
		maxSize: maxSize,
	}
}

func (g *KeyGate) TryAcquire(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.held[key]; ok {
		return ErrKeyBusy
	}
	if g.maxSize > 0 && len(g.held) >= g.maxSize {
		return ErrMaxKeysReached
	}
	g.held[key] = struct{}{}
	return nil
}

// Release reports whether the key was held.
func (g *KeyGate) Release(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.held[key]; !ok {
		return false
	}
	delete(g.held, key)
	return true
}

func (g *KeyGate) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.held[key]
	return ok
}
