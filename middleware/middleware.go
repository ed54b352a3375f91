// middleware/middleware.go
package middleware

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/chhz0/tasktrack/types"
)

type Handler func(ctx context.Context, act *types.Action) error
type Middleware func(next Handler) Handler

// 中间件链: the first middleware is the outermost
func Chain(middlewares ...Middleware) Middleware {
	return func(final Handler) Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// 超时中间件, d <= 0 disables it
func Timeout(d time.Duration) Middleware {
	return func(next Handler) Handler {
		if d <= 0 {
			return next
		}
		return func(ctx context.Context, act *types.Action) error {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, act)
		}
	}
}

// 日志中间件
func Logger(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, act *types.Action) error {
			start := time.Now()
			logger.Debug("action started", "key", act.Key, "action", act.Name)

			err := next(ctx, act)

			duration := time.Since(start)
			if err != nil {
				logger.Error("action failed", "key", act.Key, "action", act.Name, "duration", duration, "error", err)
			} else {
				logger.Debug("action finished", "key", act.Key, "action", act.Name, "duration", duration)
			}
			return err
		}
	}
}

// ActionStats is the tally for one action name.
type ActionStats struct {
	Name     string
	Calls    int
	Failures int
	Total    time.Duration
}

// Stats collects per-action counters.
type Stats struct {
	mu      sync.Mutex
	actions map[string]*ActionStats
}

func NewStats() *Stats {
	return &Stats{actions: make(map[string]*ActionStats)}
}

func (s *Stats) record(name string, d time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.actions[name]
	if !ok {
		st = &ActionStats{Name: name}
		s.actions[name] = st
	}
	st.Calls++
	st.Total += d
	if err != nil {
		st.Failures++
	}
}

// Snapshot returns a copy of the counters sorted by action name.
func (s *Stats) Snapshot() []ActionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ActionStats, 0, len(s.actions))
	for _, st := range s.actions {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// 指标收集中间件
func Metrics(stats *Stats) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, act *types.Action) error {
			start := time.Now()
			err := next(ctx, act)
			stats.record(act.Name, time.Since(start), err)
			return err
		}
	}
}
