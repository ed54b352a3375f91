package shell

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/chhz0/tasktrack/core"
	"github.com/chhz0/tasktrack/storage"
	"github.com/chhz0/tasktrack/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func runScript(t *testing.T, store *core.Store, rec *core.Recorder, lines ...string) string {
	t.Helper()

	var out bytes.Buffer
	sh, err := New(Config{
		In:            strings.NewReader(strings.Join(lines, "\n") + "\n"),
		Out:           &out,
		Store:         store,
		Recorder:      rec,
		Logger:        discardLogger,
		ActionTimeout: time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, sh.Run(context.Background()))
	return out.String()
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{In: strings.NewReader(""), Out: io.Discard})
	assert.ErrorIs(t, err, ErrNilStore)

	_, err = New(Config{Store: core.NewStore()})
	assert.Error(t, err)
}

func TestMenu(t *testing.T) {
	out := runScript(t, core.NewStore(), nil, "6")

	assert.Contains(t, out, "--- Task Manager ---")
	for _, line := range []string{
		"1) Add task",
		"2) Show tasks by priority",
		"3) View next task",
		"4) Complete next task",
		"5) Search tasks by tag",
		"6) Exit",
		"Select an option: ",
	} {
		assert.Contains(t, out, line)
	}
	assert.Equal(t, 1, strings.Count(out, "--- Task Manager ---"), "exit stops the loop")
}

func TestScenario(t *testing.T) {
	store := core.NewStore()
	out := runScript(t, store, nil,
		"1", "Write report", "5", "work, urgent",
		"1", "Buy milk", "1", "home",
		"1", "Fix bug", "5", "work",
		"2",
		"5", "work",
		"3",
		"4",
		"5", "work",
		"6",
	)

	assert.Contains(t, out, "Task added (id 0).")
	assert.Contains(t, out, "Task added (id 2).")
	assert.Contains(t, out, "Tasks by priority:")
	assert.Contains(t, out, "Tasks with tag 'work':")
	assert.Contains(t, out, "Next task: #0 [p5] Write report {work, urgent}")
	assert.Contains(t, out, "Completed task: #0 [p5] Write report {work, urgent}")
	assert.Contains(t, out, "#1 [p5] Fix bug {work}")

	listing := out[strings.Index(out, "Tasks by priority:"):]
	assert.Less(t, strings.Index(listing, "Write report"), strings.Index(listing, "Buy milk"))
	assert.Less(t, strings.Index(listing, "Fix bug"), strings.Index(listing, "Buy milk"))

	assert.Equal(t, 2, store.Len())
}

func TestEmptyStoreMessages(t *testing.T) {
	out := runScript(t, core.NewStore(), nil, "3", "4", "5", "nothing", "6")

	assert.Contains(t, out, "No tasks available.")
	assert.Contains(t, out, "No tasks to complete.")
	assert.Contains(t, out, "No tasks found for tag 'nothing'.")
}

func TestInvalidOption(t *testing.T) {
	out := runScript(t, core.NewStore(), nil, "9", "", "abc", "6")
	assert.Equal(t, 3, strings.Count(out, "Invalid option."))
}

func TestAddParsesInput(t *testing.T) {
	store := core.NewStore()
	runScript(t, store, nil,
		"1", "  padded  ", "not a number", " a ,, b , ",
		"1", "negative", "-3", "",
		"6",
	)

	tasks := store.ListTasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "padded", tasks[0].Description)
	assert.Equal(t, uint32(0), tasks[0].Priority)
	assert.Equal(t, []string{"a", "b"}, tasks[0].Tags)
	assert.Equal(t, uint32(0), tasks[1].Priority)
	assert.Empty(t, tasks[1].Tags)
}

func TestEndOfInputExits(t *testing.T) {
	store := core.NewStore()
	out := runScript(t, store, nil, "1", "half entered")

	assert.Equal(t, 0, store.Len(), "incomplete add is dropped")
	assert.NotContains(t, out, "Task added")
}

func TestRunStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	sh, err := New(Config{In: pr, Out: io.Discard, Store: core.NewStore(), Logger: discardLogger})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sh.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestEventsRecorded(t *testing.T) {
	journal := storage.NewMemoryJournal()
	rec, err := core.NewRecorder(journal, nil, discardLogger)
	require.NoError(t, err)

	runScript(t, core.NewStore(), rec,
		"1", "a", "2", "x",
		"1", "b", "9", "y",
		"4",
		"4",
		"4",
		"6",
	)

	events, err := journal.Events(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 4)
	kinds := []types.EventKind{events[0].Kind, events[1].Kind, events[2].Kind, events[3].Kind}
	assert.Equal(t, []types.EventKind{
		types.EventTaskAdded, types.EventTaskAdded, types.EventTaskCompleted, types.EventTaskCompleted,
	}, kinds)
	assert.Equal(t, "b", events[2].Task.Description)
	assert.Equal(t, 1, events[2].Task.ID)
	assert.Equal(t, "a", events[3].Task.Description)
	assert.Equal(t, 0, events[3].Task.ID)
}

func TestStatsCounted(t *testing.T) {
	var out bytes.Buffer
	sh, err := New(Config{
		In:     strings.NewReader("2\n3\n3\n6\n"),
		Out:    &out,
		Store:  core.NewStore(),
		Logger: discardLogger,
	})
	require.NoError(t, err)
	require.NoError(t, sh.Run(context.Background()))

	calls := map[string]int{}
	for _, st := range sh.Stats() {
		calls[st.Name] = st.Calls
	}
	assert.Equal(t, map[string]int{
		"Show tasks by priority": 1,
		"View next task":         2,
		"Exit":                   1,
	}, calls)
}

func TestParsePriority(t *testing.T) {
	tests := map[string]uint32{
		"5":           5,
		" 12 ":        12,
		"0":           0,
		"":            0,
		"-1":          0,
		"abc":         0,
		"4294967295":  4294967295,
		"4294967296":  0,
		"3.5":         0,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParsePriority(in), "input %q", in)
	}
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"work", "urgent"}, ParseTags("work, urgent"))
	assert.Equal(t, []string{"a", "a"}, ParseTags("a,a"))
	assert.Nil(t, ParseTags(""))
	assert.Nil(t, ParseTags(" , ,"))
	assert.Equal(t, []string{"Mixed Case"}, ParseTags("  Mixed Case  "))
}

func TestRegistryActionsSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("2", "b", nil, nil)
	r.Register("1", "a", []string{"Name: "}, nil)

	acts := r.Actions()
	require.Len(t, acts, 2)
	assert.Equal(t, "1", acts[0].Key)

	_, prompts, _, ok := r.Get("1")
	require.True(t, ok)
	assert.Equal(t, []string{"Name: "}, prompts)

	_, _, _, ok = r.Get("3")
	assert.False(t, ok)
}

// deadlineJournal refuses writes whose context is already done, like the
// sqlite and redis journals do.
type deadlineJournal struct {
	*storage.MemoryJournal
}

func (j deadlineJournal) Append(ctx context.Context, ev *types.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return j.MemoryJournal.Append(ctx, ev)
}

func TestSlowInputKeepsEvent(t *testing.T) {
	journal := deadlineJournal{storage.NewMemoryJournal()}
	rec, err := core.NewRecorder(journal, nil, discardLogger)
	require.NoError(t, err)

	pr, pw := io.Pipe()
	store := core.NewStore()
	sh, err := New(Config{
		In:            pr,
		Out:           io.Discard,
		Store:         store,
		Recorder:      rec,
		Logger:        discardLogger,
		ActionTimeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	go func() {
		io.WriteString(pw, "1\nWrite report\n")
		time.Sleep(200 * time.Millisecond)
		io.WriteString(pw, "5\nwork\n6\n")
		pw.Close()
	}()
	require.NoError(t, sh.Run(context.Background()))

	assert.Equal(t, 1, store.Len())
	events, err := journal.Events(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, types.EventTaskAdded, events[0].Kind)
	assert.Equal(t, "Write report", events[0].Task.Description)
}

func TestLongInputLine(t *testing.T) {
	store := core.NewStore()
	desc := strings.Repeat("x", 100*1024)
	runScript(t, store, nil, "1", desc, "1", "", "6")

	tasks := store.ListTasks()
	require.Len(t, tasks, 1)
	assert.Len(t, tasks[0].Description, len(desc))
}

func TestOversizedInputLogged(t *testing.T) {
	var logs bytes.Buffer
	store := core.NewStore()
	sh, err := New(Config{
		In:     strings.NewReader("1\n" + strings.Repeat("x", MaxLineSize+1) + "\n"),
		Out:    io.Discard,
		Store:  store,
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)
	require.NoError(t, sh.Run(context.Background()))

	assert.Equal(t, 0, store.Len())
	assert.Contains(t, logs.String(), "input read failed")
	assert.Contains(t, logs.String(), "token too long")
}
