// core/store.go
package core

import (
	"container/heap"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/chhz0/tasktrack/types"
)

// Store owns every task and keeps three views in step: the task slice
// (source of truth, id == index), a priority heap of (priority, id) and a
// tag index of tag -> ids.
//
// All views change together under one lock, so a caller never sees them
// disagree. Ids are reassigned on every completion; do not hold on to an id
// across CompleteNext.
type Store struct {
	tasks    []types.Task
	queue    priorityQueue
	tagIndex map[string][]int
	mu       sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		tagIndex: make(map[string][]int),
	}
}

// Add appends a task and returns its id. Tags are expected to be trimmed
// and non-empty already.
func (s *Store) Add(description string, priority uint32, tags []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := len(s.tasks)
	task := types.Task{
		ID:          id,
		Description: description,
		Priority:    priority,
		Tags:        append([]string(nil), tags...),
	}
	s.tasks = append(s.tasks, task)
	s.queue.push(entry{priority: priority, id: id})
	s.indexTags(task)
	return id
}

// PeekNext returns the highest-priority task without removing it.
func (s *Store) PeekNext() (types.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.queue.peek()
	if !ok {
		return types.Task{}, false
	}
	return s.tasks[e.id].Clone(), true
}

// CompleteNext removes the highest-priority task and returns it with the id
// it had before removal. The remaining tasks are renumbered.
func (s *Store) CompleteNext() (types.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.queue.pop()
	if !ok {
		return types.Task{}, false
	}
	// the heap is rebuilt after every removal, a miss here is a bug
	if e.id < 0 || e.id >= len(s.tasks) || s.tasks[e.id].Priority != e.priority {
		panic(fmt.Sprintf("core: priority view entry (priority=%d, id=%d) does not match a live task", e.priority, e.id))
	}

	done := s.tasks[e.id]
	s.tasks = slices.Delete(s.tasks, e.id, e.id+1)
	s.rebuild()
	return done, true
}

// ListTasks returns copies of all tasks, highest priority first. Equal
// priorities keep id order.
func (s *Store) ListTasks() []types.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]types.Task, len(s.tasks))
	for i, t := range s.tasks {
		list[i] = t.Clone()
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Priority > list[j].Priority
	})
	return list
}

// TasksByTag returns the tasks indexed under tag in index order. The match
// is exact and case-sensitive.
func (s *Store) TasksByTag(tag string) []types.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.tagIndex[tag]
	result := make([]types.Task, 0, len(ids))
	for _, id := range ids {
		if id < len(s.tasks) {
			result = append(result, s.tasks[id].Clone())
		}
	}
	return result
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// indexTags records task.ID under each of its tags. A tag repeated on the
// same task is indexed once.
func (s *Store) indexTags(task types.Task) {
	for _, tag := range task.Tags {
		ids := s.tagIndex[tag]
		if n := len(ids); n > 0 && ids[n-1] == task.ID {
			continue
		}
		s.tagIndex[tag] = append(ids, task.ID)
	}
}

// rebuild renumbers every task by position and re-creates the heap and tag
// index from scratch. It is the only place ids change.
func (s *Store) rebuild() {
	s.queue.reset()
	clear(s.tagIndex)
	for i := range s.tasks {
		s.tasks[i].ID = i
		s.queue = append(s.queue, entry{priority: s.tasks[i].Priority, id: i})
		s.indexTags(s.tasks[i])
	}
	heap.Init(&s.queue)
}
