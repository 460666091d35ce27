package flow

import "sync"

// KeyModifiers is the modifier state reported by a key event. Only the two
// toggles that cause silent typing mistakes are tracked.
type KeyModifiers struct {
	CapsLock bool
	NumLock  bool
}

// ModifierTracker derives the two advisory warnings from the most recent key
// event's modifier state. The warnings never block submission.
//
// Until an event is observed the tracker assumes caps lock off and num lock
// engaged, so no warning shows before the user starts typing.
type ModifierTracker struct {
	mu       sync.Mutex
	observed bool
	current  KeyModifiers
}

// NewModifierTracker creates a tracker in its default state.
func NewModifierTracker() *ModifierTracker {
	return &ModifierTracker{}
}

// Observe records the modifier state of the latest key event.
func (t *ModifierTracker) Observe(mods KeyModifiers) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observed = true
	t.current = mods
}

// CapsLockOn reports whether the locking modifier was engaged on the most
// recent key event.
func (t *ModifierTracker) CapsLockOn() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.observed && t.current.CapsLock
}

// NumLockOff reports whether the numeric toggle was disengaged on the most
// recent key event.
func (t *ModifierTracker) NumLockOff() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.observed && !t.current.NumLock
}

// Subscribe consumes modifier states from events until the channel is closed
// or the returned stop function is called. Stop blocks until the consumer
// goroutine has exited, so a tracker never outlives its event source.
func (t *ModifierTracker) Subscribe(events <-chan KeyModifiers) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		for {
			select {
			case mods, ok := <-events:
				if !ok {
					return
				}
				t.Observe(mods)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
		})
		<-finished
	}
}
