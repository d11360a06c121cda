// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package bus is the in-process notification bus between the engine and
// the outward-facing layers.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/log"
	"github.com/ManuGH/eventd/internal/metrics"
)

// MemoryBus is an in-memory pub/sub. It is not durable and delivers
// in-process while publish contexts remain active.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string][]*memSub
	buffer int
}

const (
	dropLogEvery  = 100
	defaultBuffer = 64
)

var dropCount atomic.Uint64

// NewMemoryBus creates a bus whose subscriptions buffer up to buffer
// messages. A buffer < 1 selects the default.
func NewMemoryBus(buffer int) *MemoryBus {
	if buffer < 1 {
		buffer = defaultBuffer
	}
	return &MemoryBus{subs: make(map[string][]*memSub), buffer: buffer}
}

func publishDropReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "context_done"
	}
}

// Publish delivers event to every subscriber of topic. It blocks on a full
// subscriber until ctx is done, then counts the drop.
func (b *MemoryBus) Publish(ctx context.Context, topic string, event any) error {
	if ctx == nil {
		return fmt.Errorf("publish context is nil")
	}
	b.mu.RLock()
	subs := append([]*memSub(nil), b.subs[topic]...)
	b.mu.RUnlock()

	for _, s := range subs {
		select {
		case s.ch <- event:
		case <-s.done:
			// closed while we were publishing
		case <-ctx.Done():
			reason := publishDropReason(ctx.Err())
			metrics.IncBusDropReason(topic, reason)
			count := dropCount.Add(1)
			if count%dropLogEvery == 1 {
				log.L().Warn().
					Str("topic", topic).
					Str("reason", reason).
					Uint64("dropped", count).
					Msg("memory bus failed to publish due to context cancellation")
			}
			return fmt.Errorf("publish topic %q: %w", topic, ctx.Err())
		}
	}
	return nil
}

// Subscribe registers a subscription on topic. It is closed when ctx is
// done or Close is called, whichever comes first.
func (b *MemoryBus) Subscribe(ctx context.Context, topic string) (ports.Subscription, error) {
	if ctx == nil {
		return nil, fmt.Errorf("subscribe context is nil")
	}
	s := &memSub{b: b, topic: topic, ch: make(chan any, b.buffer), done: make(chan struct{})}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], s)
	b.mu.Unlock()

	if ctx.Done() != nil {
		// an already-done ctx runs Close right away; it waits on mu for stop
		s.mu.Lock()
		s.stop = context.AfterFunc(ctx, func() { _ = s.Close() })
		s.mu.Unlock()
	}
	return s, nil
}

type memSub struct {
	b     *MemoryBus
	topic string
	ch    chan any
	done  chan struct{}
	once  sync.Once
	mu    sync.Mutex
	stop  func() bool
}

func (s *memSub) C() <-chan any {
	return s.ch
}

// Done is closed once the subscription is closed.
func (s *memSub) Done() <-chan struct{} {
	return s.done
}

func (s *memSub) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		stop := s.stop
		s.mu.Unlock()
		if stop != nil {
			stop()
		}
		s.b.mu.Lock()
		lst := s.b.subs[s.topic]
		out := lst[:0]
		for _, c := range lst {
			if c != s {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			delete(s.b.subs, s.topic)
		} else {
			s.b.subs[s.topic] = out
		}
		s.b.mu.Unlock()
		// ch stays open: a publisher may still hold s from its snapshot.
		close(s.done)
	})
	return nil
}

var _ ports.Bus = (*MemoryBus)(nil)
