// Package disposable provides cancellation handles returned by every scheduling call.
//
// Disposal is advisory: it sets a flag that schedulers consult before starting
// work. It never interrupts work that is already running.
package disposable

import (
	"sync"
	"sync/atomic"
)

// Disposable is the caller's right to stop future executions of scheduled work.
// Dispose is idempotent and safe to call from any goroutine, including from
// inside the scheduled action.
type Disposable interface {
	Dispose()
	IsDisposed() bool
}

// Boolean is a Disposable backed by a single atomic flag.
type Boolean struct {
	disposed atomic.Bool
}

// NewBoolean returns a Boolean that is not yet disposed.
func NewBoolean() *Boolean {
	return &Boolean{}
}

func (b *Boolean) Dispose() {
	b.disposed.Store(true)
}

func (b *Boolean) IsDisposed() bool {
	return b.disposed.Load()
}

// Func runs its release function exactly once on the first Dispose.
type Func struct {
	once     sync.Once
	disposed atomic.Bool
	release  func()
}

// NewFunc returns a Disposable that calls release on first disposal.
// A nil release is allowed.
func NewFunc(release func()) *Func {
	return &Func{release: release}
}

func (f *Func) Dispose() {
	f.once.Do(func() {
		f.disposed.Store(true)
		if f.release != nil {
			f.release()
		}
	})
}

func (f *Func) IsDisposed() bool {
	return f.disposed.Load()
}

// Composite disposes a group of Disposables together. Items added after
// disposal are disposed immediately.
type Composite struct {
	mu       sync.Mutex
	items    []Disposable
	disposed atomic.Bool
}

// NewComposite returns a Composite holding items.
func NewComposite(items ...Disposable) *Composite {
	return &Composite{items: items}
}

// Add adds d to the group.
func (c *Composite) Add(d Disposable) {
	if d == nil {
		return
	}
	c.mu.Lock()
	if c.disposed.Load() {
		c.mu.Unlock()
		d.Dispose()
		return
	}
	c.items = append(c.items, d)
	c.mu.Unlock()
}

func (c *Composite) Dispose() {
	c.mu.Lock()
	if c.disposed.Swap(true) {
		c.mu.Unlock()
		return
	}
	items := c.items
	c.items = nil
	c.mu.Unlock()

	for _, d := range items {
		d.Dispose()
	}
}

func (c *Composite) IsDisposed() bool {
	return c.disposed.Load()
}

// Len returns the number of live items in the group.
func (c *Composite) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Serial holds one replaceable inner Disposable. Setting a new inner value
// disposes the previous one; after disposal every new value is disposed
// immediately.
type Serial struct {
	mu       sync.Mutex
	current  Disposable
	disposed atomic.Bool
}

// NewSerial returns an empty Serial.
func NewSerial() *Serial {
	return &Serial{}
}

// Set replaces the inner Disposable.
func (s *Serial) Set(d Disposable) {
	s.mu.Lock()
	if s.disposed.Load() {
		s.mu.Unlock()
		if d != nil {
			d.Dispose()
		}
		return
	}
	prev := s.current
	s.current = d
	s.mu.Unlock()

	if prev != nil {
		prev.Dispose()
	}
}

func (s *Serial) Dispose() {
	s.mu.Lock()
	if s.disposed.Swap(true) {
		s.mu.Unlock()
		return
	}
	cur := s.current
	s.current = nil
	s.mu.Unlock()

	if cur != nil {
		cur.Dispose()
	}
}

func (s *Serial) IsDisposed() bool {
	return s.disposed.Load()
}

type empty struct{}

func (empty) Dispose()         {}
func (empty) IsDisposed() bool { return true }

// Empty returns a Disposable that is already disposed. Schedulers return it
// for work that completed synchronously.
func Empty() Disposable {
	return empty{}
}
