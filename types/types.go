// types/types.go
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is one tracked item. ID is its position in the store and changes
// whenever an earlier task is completed.
type Task struct {
	ID          int      `json:"id"`
	Description string   `json:"description"`
	Priority    uint32   `json:"priority"`
	Tags        []string `json:"tags"`
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	c := t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	return c
}

// HasTag reports whether tag is among the task's tags (exact match).
func (t Task) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

func (t Task) String() string {
	return fmt.Sprintf("#%d [p%d] %s {%s}", t.ID, t.Priority, t.Description, strings.Join(t.Tags, ", "))
}

// EventKind names what happened to a task
type EventKind string

const (
	EventTaskAdded     EventKind = "task.added"
	EventTaskCompleted EventKind = "task.completed"
)

// Event is emitted for every store mutation and written to journals and
// transports. Task holds the id valid at the time of the event.
type Event struct {
	ID   uuid.UUID `json:"id"`
	Kind EventKind `json:"kind"`
	Task Task      `json:"task"`
	At   time.Time `json:"at"`
}

func NewEvent(kind EventKind, task Task) *Event {
	return &Event{
		ID:   uuid.New(),
		Kind: kind,
		Task: task.Clone(),
		At:   time.Now().UTC(),
	}
}

// 序列化事件
func (e *Event) Serialize() ([]byte, error) {
	return json.Marshal(e)
}

// 反序列化事件
func DeserializeEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Action is one shell menu entry as seen by middleware. Args holds the
// answers to the entry's prompts, collected before the handler runs.
type Action struct {
	Key  string
	Name string
	Args []string
}
