package disposable

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoolean_Dispose(t *testing.T) {
	b := NewBoolean()
	assert.False(t, b.IsDisposed())

	b.Dispose()
	assert.True(t, b.IsDisposed())

	// Disposing again keeps it disposed.
	b.Dispose()
	assert.True(t, b.IsDisposed())
}

func TestBoolean_ConcurrentDispose(t *testing.T) {
	b := NewBoolean()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Dispose()
			_ = b.IsDisposed()
		}()
	}
	wg.Wait()

	assert.True(t, b.IsDisposed())
}

func TestFunc_ReleasesOnce(t *testing.T) {
	var calls atomic.Int32
	f := NewFunc(func() { calls.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Dispose()
		}()
	}
	wg.Wait()

	assert.True(t, f.IsDisposed())
	assert.Equal(t, int32(1), calls.Load())
}

func TestFunc_NilRelease(t *testing.T) {
	f := NewFunc(nil)
	f.Dispose()
	assert.True(t, f.IsDisposed())
}

func TestFunc_DisposedBeforeRelease(t *testing.T) {
	var f *Func
	f = NewFunc(func() {
		assert.True(t, f.IsDisposed())
	})
	f.Dispose()
	assert.True(t, f.IsDisposed())
}

func TestComposite(t *testing.T) {
	a, b := NewBoolean(), NewBoolean()
	c := NewComposite(a)
	c.Add(b)
	assert.Equal(t, 2, c.Len())

	c.Dispose()
	assert.True(t, a.IsDisposed())
	assert.True(t, b.IsDisposed())
	assert.Equal(t, 0, c.Len())

	late := NewBoolean()
	c.Add(late)
	assert.True(t, late.IsDisposed(), "items added after disposal are disposed immediately")
}

func TestSerial(t *testing.T) {
	s := NewSerial()
	first, second := NewBoolean(), NewBoolean()

	s.Set(first)
	s.Set(second)
	assert.True(t, first.IsDisposed(), "replacing disposes the previous value")
	assert.False(t, second.IsDisposed())

	s.Dispose()
	assert.True(t, s.IsDisposed())
	assert.True(t, second.IsDisposed())

	third := NewBoolean()
	s.Set(third)
	assert.True(t, third.IsDisposed())

	s.Set(nil)
}

func TestEmpty(t *testing.T) {
	e := Empty()
	assert.True(t, e.IsDisposed())
	e.Dispose()
	assert.True(t, e.IsDisposed())
}
