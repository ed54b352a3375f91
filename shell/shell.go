package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/chhz0/tasktrack/core"
	"github.com/chhz0/tasktrack/middleware"
	"github.com/chhz0/tasktrack/types"
	"github.com/fatih/color"
)

// Menu keys.
const (
	KeyAdd      = "1"
	KeyList     = "2"
	KeyPeek     = "3"
	KeyComplete = "4"
	KeySearch   = "5"
	KeyExit     = "6"
)

var ErrNilStore = errors.New("store cannot be nil")

type Config struct {
	In    io.Reader
	Out   io.Writer
	Store *core.Store
	// Recorder is optional; without it no events are emitted.
	Recorder      *core.Recorder
	Logger        *slog.Logger
	ActionTimeout time.Duration
	Color         bool
}

// Shell is the line-oriented front-end over a Store.
type Shell struct {
	out      io.Writer
	in       io.Reader
	lines    <-chan string
	store    *core.Store
	recorder *core.Recorder
	logger   *slog.Logger
	registry *Registry
	stats    *middleware.Stats
	chain    middleware.Middleware
	done     bool

	heading *color.Color
	accent  *color.Color
}

func New(cfg Config) (*Shell, error) {
	if cfg.Store == nil {
		return nil, ErrNilStore
	}
	if cfg.In == nil || cfg.Out == nil {
		return nil, errors.New("shell needs both input and output")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Shell{
		out:      cfg.Out,
		in:       cfg.In,
		store:    cfg.Store,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
		registry: NewRegistry(),
		stats:    middleware.NewStats(),
		heading:  color.New(color.Bold, color.FgCyan),
		accent:   color.New(color.FgYellow),
	}
	if !cfg.Color {
		s.heading.DisableColor()
		s.accent.DisableColor()
	}
	s.chain = middleware.Chain(
		middleware.Logger(s.logger),
		middleware.Metrics(s.stats),
		middleware.Timeout(cfg.ActionTimeout),
	)

	s.registry.Register(KeyAdd, "Add task",
		[]string{"Description: ", "Priority (integer): ", "Tags (comma-separated): "}, s.addTask)
	s.registry.Register(KeyList, "Show tasks by priority", nil, s.listTasks)
	s.registry.Register(KeyPeek, "View next task", nil, s.peekNext)
	s.registry.Register(KeyComplete, "Complete next task", nil, s.completeNext)
	s.registry.Register(KeySearch, "Search tasks by tag", []string{"Enter tag: "}, s.searchByTag)
	s.registry.Register(KeyExit, "Exit", nil, s.exit)
	return s, nil
}

// Stats exposes the per-action counters gathered so far.
func (s *Shell) Stats() []middleware.ActionStats {
	return s.stats.Snapshot()
}

// Run serves the menu until the user exits, input ends or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.lines = readLines(ctx, s.in, s.logger)
	s.done = false

	for !s.done {
		s.printMenu()
		line, ok := s.readLine(ctx)
		if !ok {
			break
		}

		act, prompts, handler, found := s.registry.Get(strings.TrimSpace(line))
		if !found {
			fmt.Fprintln(s.out, "Invalid option.")
			continue
		}
		// answers are collected before the chain so the action deadline
		// only covers the store call and its sink writes
		if act.Args, ok = s.ask(ctx, prompts); !ok {
			break
		}
		if err := s.chain(handler)(ctx, &act); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}

	for _, st := range s.stats.Snapshot() {
		s.logger.Debug("action stats", "action", st.Name, "calls", st.Calls, "failures", st.Failures, "total", st.Total)
	}
	return nil
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out)
	s.heading.Fprintln(s.out, "--- Task Manager ---")
	for _, act := range s.registry.Actions() {
		fmt.Fprintf(s.out, "%s) %s\n", act.Key, act.Name)
	}
	fmt.Fprint(s.out, "Select an option: ")
}

// ask writes each label and reads its answer. ok is false once input is
// exhausted, which also ends the session.
func (s *Shell) ask(ctx context.Context, labels []string) ([]string, bool) {
	if len(labels) == 0 {
		return nil, true
	}
	answers := make([]string, 0, len(labels))
	for _, label := range labels {
		fmt.Fprint(s.out, label)
		line, ok := s.readLine(ctx)
		if !ok {
			return nil, false
		}
		answers = append(answers, line)
	}
	return answers, true
}

func (s *Shell) readLine(ctx context.Context) (string, bool) {
	select {
	case line, ok := <-s.lines:
		if !ok {
			s.done = true
			return "", false
		}
		return line, true
	case <-ctx.Done():
		s.done = true
		return "", false
	}
}

// MaxLineSize is the longest input line the shell accepts.
const MaxLineSize = 1 << 20

// readLines feeds input lines to a channel so a blocked read never holds up
// cancellation. A read error ends input like EOF but is logged.
func readLines(ctx context.Context, r io.Reader, logger *slog.Logger) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			logger.Error("input read failed", "error", err)
		}
	}()
	return ch
}

func (s *Shell) record(ctx context.Context, kind types.EventKind, task types.Task) {
	if s.recorder == nil {
		return
	}
	// the store is authoritative, a failed sink only gets logged
	if _, err := s.recorder.Record(ctx, kind, task); err != nil {
		s.logger.Warn("task event not recorded", "kind", kind, "task_id", task.ID, "error", err)
	}
}

func (s *Shell) addTask(ctx context.Context, act *types.Action) error {
	if len(act.Args) < 3 {
		return fmt.Errorf("add task: want 3 answers, got %d", len(act.Args))
	}
	task := types.Task{
		Description: strings.TrimSpace(act.Args[0]),
		Priority:    ParsePriority(act.Args[1]),
		Tags:        ParseTags(act.Args[2]),
	}
	task.ID = s.store.Add(task.Description, task.Priority, task.Tags)
	fmt.Fprintf(s.out, "Task added (id %d).\n", task.ID)

	s.record(ctx, types.EventTaskAdded, task)
	return nil
}

func (s *Shell) listTasks(ctx context.Context, act *types.Action) error {
	fmt.Fprintln(s.out)
	s.heading.Fprintln(s.out, "Tasks by priority:")
	for _, task := range s.store.ListTasks() {
		fmt.Fprintln(s.out, task)
	}
	return nil
}

func (s *Shell) peekNext(ctx context.Context, act *types.Action) error {
	task, ok := s.store.PeekNext()
	if !ok {
		fmt.Fprintln(s.out, "No tasks available.")
		return nil
	}
	fmt.Fprintf(s.out, "%s %s\n", s.accent.Sprint("Next task:"), task)
	return nil
}

func (s *Shell) completeNext(ctx context.Context, act *types.Action) error {
	task, ok := s.store.CompleteNext()
	if !ok {
		fmt.Fprintln(s.out, "No tasks to complete.")
		return nil
	}
	fmt.Fprintf(s.out, "%s %s\n", s.accent.Sprint("Completed task:"), task)

	s.record(ctx, types.EventTaskCompleted, task)
	return nil
}

func (s *Shell) searchByTag(ctx context.Context, act *types.Action) error {
	if len(act.Args) < 1 {
		return errors.New("search: missing tag")
	}
	tag := strings.TrimSpace(act.Args[0])

	results := s.store.TasksByTag(tag)
	if len(results) == 0 {
		fmt.Fprintf(s.out, "No tasks found for tag '%s'.\n", tag)
		return nil
	}
	s.heading.Fprintf(s.out, "Tasks with tag '%s':\n", tag)
	for _, task := range results {
		fmt.Fprintln(s.out, task)
	}
	return nil
}

func (s *Shell) exit(ctx context.Context, act *types.Action) error {
	s.done = true
	return nil
}
