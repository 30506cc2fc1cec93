package events

import (
	"context"
	"sync"
)

// MemoryPublisher collects published events in process. Used in tests.
type MemoryPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
}

// NewMemoryPublisher creates an empty in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{messages: make(map[string][][]byte)}
}

// Publish records the message under its subject
func (p *MemoryPublisher) Publish(_ context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	p.messages[subject] = append(p.messages[subject], stored)

	return nil
}

// Messages returns the messages recorded for a subject
func (p *MemoryPublisher) Messages(subject string) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([][]byte, len(p.messages[subject]))
	copy(out, p.messages[subject])

	return out
}

// Close is a no-op
func (p *MemoryPublisher) Close() error { return nil }
