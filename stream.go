package hotconf

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/samber/ro"
)

// DefaultSubscriptionBuffer is the per-subscriber buffer capacity used
// by Cell.Subscribe.
const DefaultSubscriptionBuffer = 100

// publisher fans published values out to any number of subscriptions.
// Publishing never blocks: a subscriber whose buffer is full loses its
// oldest value and is told about the gap on its next Recv.
type publisher[T any] struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription[T]
	nextID uint64
	closed bool
}

func newPublisher[T any]() *publisher[T] {
	return &publisher[T]{subs: make(map[uint64]*Subscription[T])}
}

func (p *publisher[T]) subscribe(buffer int) *Subscription[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := &Subscription[T]{
		pub: p,
		id:  p.nextID,
		ch:  make(chan T, buffer),
	}
	p.nextID++
	if p.closed {
		close(s.ch)
		s.closed = true
		return s
	}
	p.subs[s.id] = s
	return s
}

func (p *publisher[T]) publish(v T) {
	p.mu.Lock()
	subs := make([]*Subscription[T], 0, len(p.subs))
	for _, s := range p.subs {
		subs = append(subs, s)
	}
	p.mu.Unlock()

	for _, s := range subs {
		s.push(v)
	}
}

func (p *publisher[T]) remove(id uint64) {
	p.mu.Lock()
	s, ok := p.subs[id]
	delete(p.subs, id)
	p.mu.Unlock()
	if ok {
		s.close()
	}
}

func (p *publisher[T]) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	subs := p.subs
	p.subs = make(map[uint64]*Subscription[T])
	p.mu.Unlock()

	for _, s := range subs {
		s.close()
	}
}

// Subscription is one receiver attached to a cell's change publisher.
// It observes only values published after it was created, in publish
// order. Consume it through Recv or Observable, not both.
type Subscription[T any] struct {
	pub    *publisher[T]
	id     uint64
	ch     chan T
	mu     sync.Mutex
	closed bool
	missed atomic.Uint64
}

// push delivers a value, dropping the oldest buffered value on overflow.
func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- v:
		return
	default:
	}
	// Buffer full: make room by discarding the oldest value.
	select {
	case <-s.ch:
		s.missed.Add(1)
	default:
	}
	select {
	case s.ch <- v:
	default:
		s.missed.Add(1)
	}
}

// Recv blocks until a value is published, the context is done, or the
// subscription is closed. If the subscriber fell behind, Recv first
// returns a LaggedError reporting how many values were dropped; the
// following call resumes delivery in order.
func (s *Subscription[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	if n := s.missed.Swap(0); n > 0 {
		return zero, LaggedError{Missed: n}
	}
	select {
	case v, ok := <-s.ch:
		if !ok {
			return zero, ErrSubscriptionClosed
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Observable adapts the subscription to a samber/ro stream so callers
// can apply reactive operators. The observable completes when the
// subscription is closed. Dropped values are not signaled here; use
// Recv when lag detection matters.
func (s *Subscription[T]) Observable() ro.Observable[T] {
	return ro.FromChannel(s.ch)
}

// Close detaches the subscription from its publisher. Values already
// buffered can still be drained with Recv. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.pub.remove(s.id)
}

func (s *Subscription[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
