package worker

import (
	"context"
	"sync"

	"github.com/eapache/queue"
)

// MemoryProvider is an in-process FIFO Provider backed by a ring buffer
type MemoryProvider struct {
	mu        sync.Mutex
	items     *queue.Queue
	maxLen    int
	notify    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// NewMemoryProvider creates a provider. maxLen <= 0 means unbounded.
func NewMemoryProvider(maxLen int) *MemoryProvider {
	return &MemoryProvider{
		items:  queue.New(),
		maxLen: maxLen,
		notify: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Push implements Provider
func (p *MemoryProvider) Push(task *Task) error {
	p.mu.Lock()
	select {
	case <-p.closed:
		p.mu.Unlock()
		return ErrProviderClosed
	default:
	}
	if p.maxLen > 0 && p.items.Length() >= p.maxLen {
		p.mu.Unlock()
		return ErrQueueFull
	}
	p.items.Add(task)
	p.mu.Unlock()

	p.signal()
	return nil
}

// Fetch implements Provider
func (p *MemoryProvider) Fetch(ctx context.Context) (*Task, error) {
	for {
		p.mu.Lock()
		select {
		case <-p.closed:
			p.mu.Unlock()
			return nil, ErrProviderClosed
		default:
		}
		if p.items.Length() > 0 {
			task := p.items.Remove().(*Task)
			more := p.items.Length() > 0
			p.mu.Unlock()
			// Pass the wake-up on so idle fetchers drain the rest.
			if more {
				p.signal()
			}
			return task, nil
		}
		p.mu.Unlock()

		select {
		case <-p.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-p.closed:
			return nil, ErrProviderClosed
		}
	}
}

// Len implements Provider
func (p *MemoryProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items.Length()
}

// Cap implements Provider
func (p *MemoryProvider) Cap() int {
	if p.maxLen <= 0 {
		return -1
	}
	return p.maxLen
}

// Close implements Provider
func (p *MemoryProvider) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		close(p.closed)
		for p.items.Length() > 0 {
			p.items.Remove()
		}
		p.mu.Unlock()
	})
	return nil
}

func (p *MemoryProvider) signal() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}
