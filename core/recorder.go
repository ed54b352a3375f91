// core/recorder.go
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chhz0/tasktrack/retry"
	"github.com/chhz0/tasktrack/storage"
	"github.com/chhz0/tasktrack/transport"
	"github.com/chhz0/tasktrack/types"
)

var ErrNilJournal = errors.New("journal cannot be nil")

// Recorder fans store events out to a journal and, in broadcast mode, to a
// transport. It never touches the Store.
type Recorder struct {
	journal   storage.Journal
	transport transport.Transport
	policy    retry.Policy
	logger    *slog.Logger
}

func NewRecorder(journal storage.Journal, policy retry.Policy, logger *slog.Logger) (*Recorder, error) {
	if journal == nil {
		return nil, ErrNilJournal
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		journal: journal,
		policy:  policy,
		logger:  logger,
	}, nil
}

func NewRecorderWithTransport(journal storage.Journal, tr transport.Transport, policy retry.Policy, logger *slog.Logger) (*Recorder, error) {
	r, err := NewRecorder(journal, policy, logger)
	if err != nil {
		return nil, err
	}
	r.transport = tr
	return r, nil
}

// Record builds an event for task and writes it to every sink. Each sink is
// retried independently; the returned error joins all sink failures.
func (r *Recorder) Record(ctx context.Context, kind types.EventKind, task types.Task) (*types.Event, error) {
	ev := types.NewEvent(kind, task)
	log := r.logger.With("event_id", ev.ID, "kind", ev.Kind, "task_id", task.ID)

	var errs []error
	err := retry.Do(ctx, r.policy, func(ctx context.Context) error {
		return r.journal.Append(ctx, ev)
	})
	if err != nil {
		log.Error("journal append failed", "error", err)
		errs = append(errs, fmt.Errorf("journal: %w", err))
	}

	if r.transport != nil {
		err := retry.Do(ctx, r.policy, func(ctx context.Context) error {
			return r.transport.Publish(ctx, ev)
		})
		if err != nil {
			log.Error("event publish failed", "error", err)
			errs = append(errs, fmt.Errorf("transport: %w", err))
		}
	}

	if len(errs) == 0 {
		log.Debug("event recorded")
	}
	return ev, errors.Join(errs...)
}

// 关闭方法补充存储关闭
func (r *Recorder) Close() error {
	var errs []error
	if r.transport != nil {
		errs = append(errs, r.transport.Close())
	}
	errs = append(errs, r.journal.Close())
	return errors.Join(errs...)
}
