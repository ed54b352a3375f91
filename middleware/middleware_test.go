package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/chhz0/tasktrack/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, act *types.Action) error {
				order = append(order, name+">")
				err := next(ctx, act)
				order = append(order, "<"+name)
				return err
			}
		}
	}

	h := Chain(tag("a"), tag("b"))(func(ctx context.Context, act *types.Action) error {
		order = append(order, "handler")
		return nil
	})
	require.NoError(t, h(context.Background(), &types.Action{Key: "1", Name: "add"}))
	assert.Equal(t, []string{"a>", "b>", "handler", "<b", "<a"}, order)
}

func TestTimeout(t *testing.T) {
	h := Timeout(10 * time.Millisecond)(func(ctx context.Context, act *types.Action) error {
		<-ctx.Done()
		return ctx.Err()
	})
	err := h(context.Background(), &types.Action{Name: "slow"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	h = Timeout(0)(func(ctx context.Context, act *types.Action) error {
		_, ok := ctx.Deadline()
		assert.False(t, ok)
		return nil
	})
	assert.NoError(t, h(context.Background(), &types.Action{Name: "plain"}))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ok := Logger(logger)(func(ctx context.Context, act *types.Action) error { return nil })
	require.NoError(t, ok(context.Background(), &types.Action{Key: "2", Name: "list"}))
	assert.Contains(t, buf.String(), "action finished")
	assert.Contains(t, buf.String(), "action=list")

	buf.Reset()
	fail := Logger(logger)(func(ctx context.Context, act *types.Action) error { return errors.New("boom") })
	assert.Error(t, fail(context.Background(), &types.Action{Key: "4", Name: "complete"}))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "error=boom")
}

func TestMetrics(t *testing.T) {
	stats := NewStats()
	h := Chain(
		Logger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		Metrics(stats),
	)(func(ctx context.Context, act *types.Action) error {
		if act.Name == "bad" {
			return errors.New("bad")
		}
		return nil
	})

	ctx := context.Background()
	_ = h(ctx, &types.Action{Name: "good"})
	_ = h(ctx, &types.Action{Name: "good"})
	_ = h(ctx, &types.Action{Name: "bad"})

	snap := stats.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "bad", snap[0].Name)
	assert.Equal(t, 1, snap[0].Calls)
	assert.Equal(t, 1, snap[0].Failures)
	assert.Equal(t, "good", snap[1].Name)
	assert.Equal(t, 2, snap[1].Calls)
	assert.Equal(t, 0, snap[1].Failures)
}
