package cache

import "sync"

// Memo holds the most recent value computed for a key.
// A lookup with a different key recomputes and replaces the stored value.
type Memo[K comparable, V any] struct {
	mu    sync.RWMutex
	key   K
	value V
	set   bool
}

// NewMemo creates an empty Memo.
func NewMemo[K comparable, V any]() *Memo[K, V] {
	return &Memo[K, V]{}
}

// Get retrieves the stored value if it was computed for key.
func (c *Memo[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.set || c.key != key {
		var zero V
		return zero, false
	}
	return c.value, true
}

// GetOrCompute returns the value for key, calling compute on a miss.
// hit reports whether the stored value was reused.
func (c *Memo[K, V]) GetOrCompute(key K, compute func() V) (value V, hit bool) {
	if v, ok := c.Get(key); ok {
		return v, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have filled it while we waited for the lock
	if c.set && c.key == key {
		return c.value, true
	}
	c.key = key
	c.value = compute()
	c.set = true
	return c.value, false
}

// Reset clears the stored value.
func (c *Memo[K, V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zeroK K
	var zeroV V
	c.key = zeroK
	c.value = zeroV
	c.set = false
}
