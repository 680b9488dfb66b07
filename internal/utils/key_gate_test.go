package utils_test

import (
	"errors"
	"pdf-insight/internal/utils"
	"sync"
	"sync/atomic"
	"testing"
)

func TestKeyGate_SecondAcquireOnSameKeyFails(t *testing.T) {
	g := utils.NewKeyGate(10)

	if err := g.TryAcquire("doc"); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	if err := g.TryAcquire("doc"); !errors.Is(err, utils.ErrKeyBusy) {
		t.Fatalf("expected ErrKeyBusy, got %v", err)
	}
	if !g.Held("doc") {
		t.Fatal("key should be held")
	}

	if !g.Release("doc") {
		t.Fatal("release should report held key")
	}
	if err := g.TryAcquire("doc"); err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
}

func TestKeyGate_DifferentKeysAreIndependent(t *testing.T) {
	g := utils.NewKeyGate(10)

	if err := g.TryAcquire("key1"); err != nil {
		t.Fatal(err)
	}
	if err := g.TryAcquire("key2"); err != nil {
		t.Fatalf("different key should not be blocked: %v", err)
	}
}

func TestKeyGate_ErrorWhenMaxSizeReached(t *testing.T) {
	g := utils.NewKeyGate(1)

	if err := g.TryAcquire("test1"); err != nil {
		t.Fatal(err)
	}
	if err := g.TryAcquire("test2"); !errors.Is(err, utils.ErrMaxKeysReached) {
		t.Fatalf("expected ErrMaxKeysReached, got %v", err)
	}
}

func TestKeyGate_ReleaseUnknownKey(t *testing.T) {
	g := utils.NewKeyGate(10)
	if g.Release("test") {
		t.Fatal("expected release of unknown key to report false")
	}
}

func TestKeyGate_OnlyOneConcurrentWinner(t *testing.T) {
	g := utils.NewKeyGate(0)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire("doc") == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins.Load())
	}
}
