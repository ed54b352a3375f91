package storage

import (
	"context"
	"errors"

	"github.com/chhz0/tasktrack/types"
)

var (
	ErrJournalClosed = errors.New("journal closed")
	ErrNilEvent      = errors.New("nil event")
)

// Journal is an append-only sink for task events. The tracker only writes
// to it; Events exists for tooling and tests.
type Journal interface {
	Append(ctx context.Context, ev *types.Event) error
	// Events returns up to limit events, oldest first. limit <= 0 means all.
	Events(ctx context.Context, limit int) ([]*types.Event, error)
	Close() error
}

// NopJournal discards everything.
type NopJournal struct{}

func (NopJournal) Append(context.Context, *types.Event) error { return nil }

func (NopJournal) Events(context.Context, int) ([]*types.Event, error) { return nil, nil }

func (NopJournal) Close() error { return nil }
