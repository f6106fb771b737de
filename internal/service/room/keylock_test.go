package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyLockSerializesSameKey(t *testing.T) {
	k := newKeyLock()

	unlock := k.lock("room-1")

	acquired := make(chan struct{})
	go func() {
		u := k.lock("room-1")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock on the same key must block until release")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock must acquire after release")
	}
}

func TestKeyLockIndependentKeys(t *testing.T) {
	k := newKeyLock()

	unlock1 := k.lock("room-1")
	defer unlock1()

	acquired := make(chan struct{})
	go func() {
		u := k.lock("room-2")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("different keys must not contend")
	}
}

func TestKeyLockDropsUnusedEntries(t *testing.T) {
	k := newKeyLock()

	unlock := k.lock("room-1")
	unlock()

	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.locks)
}
