package shell

import (
	"sort"
	"sync"

	"github.com/chhz0/tasktrack/middleware"
	"github.com/chhz0/tasktrack/types"
)

type entry struct {
	action  types.Action
	prompts []string
	handler middleware.Handler
}

// Registry maps menu keys to action handlers.
type Registry struct {
	entries map[string]entry
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

// Register adds an action. prompts are asked in order before handler runs;
// the answers arrive in Action.Args.
func (r *Registry) Register(key, name string, prompts []string, handler middleware.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = entry{
		action:  types.Action{Key: key, Name: name},
		prompts: append([]string(nil), prompts...),
		handler: handler,
	}
}

// Get returns the action for key with its prompt labels and handler.
func (r *Registry) Get(key string) (types.Action, []string, middleware.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	return e.action, e.prompts, e.handler, ok
}

// Actions lists registered actions ordered by key.
func (r *Registry) Actions() []types.Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Action, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.action)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
