// storage/memory_store.go
package storage

import (
	"context"
	"sync"

	"github.com/chhz0/tasktrack/types"
)

type MemoryJournal struct {
	events []*types.Event
	closed bool
	mu     sync.RWMutex
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Append(ctx context.Context, ev *types.Event) error {
	if ev == nil {
		return ErrNilEvent
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrJournalClosed
	}
	cp := *ev
	cp.Task = ev.Task.Clone()
	j.events = append(j.events, &cp)
	return nil
}

func (j *MemoryJournal) Events(ctx context.Context, limit int) ([]*types.Event, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	n := len(j.events)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]*types.Event, n)
	copy(result, j.events[:n])
	return result, nil
}

func (j *MemoryJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	return nil
}
