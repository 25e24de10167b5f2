// Package invalidate carries the process-wide data version. Bulk writers
// bump it; readers holding an in-memory copy of a collection subscribe and
// reload when it changes.
package invalidate

import "sync"

// Broadcaster holds a monotonically increasing data version and fans out
// changes to subscribers. The zero value is ready to use.
type Broadcaster struct {
	mu      sync.Mutex
	version uint64
	subs    map[int]chan uint64
	nextID  int
}

// Version returns the current data version.
func (b *Broadcaster) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// Bump increments the version and notifies every subscriber. Slow
// subscribers only ever see the latest version; intermediate ones are
// coalesced.
func (b *Broadcaster) Bump() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.version++
	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- b.version
	}
	return b.version
}

// Subscribe returns a channel receiving each new version and a cancel
// function that unsubscribes and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan uint64, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]chan uint64)
	}
	id := b.nextID
	b.nextID++
	ch := make(chan uint64, 1)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}
