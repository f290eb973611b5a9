package store

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taskdock-dev/taskdock/pkg/schema"
)

// TasksBucket is the bucket holding a user's tasks inside their namespace.
const TasksBucket = "tasks"

// ErrEmptyText is returned by Create when the task text is missing.
var ErrEmptyText = errors.New("text is required")

// TaskStore is the domain adapter over the KV engine. Every operation is
// scoped to the owning user's namespace; callers pass the uid resolved
// from the request's bearer token and nothing else can cross it.
type TaskStore struct {
	store Store
}

// NewTaskStore wraps a KV store with task semantics.
func NewTaskStore(s Store) *TaskStore {
	return &TaskStore{store: s}
}

// List returns all tasks for a user, keyed by task id. A user with no
// tasks gets an empty map, not an error.
func (t *TaskStore) List(uid string) (map[string]schema.Task, error) {
	raw, err := t.store.ListBucket(uid, TasksBucket)
	if err != nil {
		if errors.Is(err, ErrBucketNotFound) || errors.Is(err, ErrNamespaceNotFound) {
			return map[string]schema.Task{}, nil
		}
		return nil, err
	}

	tasks := make(map[string]schema.Task, len(raw))
	for id, v := range raw {
		tasks[id] = decodeTask(v)
	}
	return tasks, nil
}

// Create validates, stamps, and persists a new task, returning the full
// record including its store-assigned id.
func (t *TaskStore) Create(uid, text string) (schema.Task, error) {
	if text == "" {
		return schema.Task{}, ErrEmptyText
	}

	task := schema.Task{
		ID:        uuid.NewString(),
		Text:      text,
		Completed: false,
		Timestamp: time.Now().UnixMilli(),
	}

	if err := t.store.Set(uid, TasksBucket, task.ID, encodeTask(task)); err != nil {
		return schema.Task{}, err
	}
	return task, nil
}

// SetCompleted flips the completed flag on a task. Only the completed
// field is touched; text and timestamp stay as created. Updating an id
// that does not exist succeeds without creating a record.
func (t *TaskStore) SetCompleted(uid, taskID string, completed bool) error {
	return t.store.Merge(uid, TasksBucket, taskID, map[string]any{"completed": completed})
}

// Delete removes a task. Idempotent: deleting an absent id is not an error.
func (t *TaskStore) Delete(uid, taskID string) error {
	return t.store.Delete(uid, TasksBucket, taskID)
}

// encodeTask stores tasks as plain maps so records survive the JSON
// round-trip through persistence unchanged. The id is the bucket key, not
// part of the stored value.
func encodeTask(task schema.Task) map[string]any {
	return map[string]any{
		"text":      task.Text,
		"completed": task.Completed,
		"timestamp": task.Timestamp,
	}
}

func decodeTask(v any) schema.Task {
	rec, ok := v.(map[string]any)
	if !ok {
		return schema.Task{}
	}

	var task schema.Task
	if s, ok := rec["text"].(string); ok {
		task.Text = s
	}
	if b, ok := rec["completed"].(bool); ok {
		task.Completed = b
	}
	switch ts := rec["timestamp"].(type) {
	case int64:
		task.Timestamp = ts
	case float64: // JSON numbers decode as float64
		task.Timestamp = int64(ts)
	}
	return task
}
