package store

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTaskStore_CreateAndList(t *testing.T) {
	ts := NewTaskStore(NewMemStore(nil, nil))

	before := time.Now().UnixMilli()
	task, err := ts.Create("u1", "Buy milk")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.ID == "" {
		t.Error("Created task has no id")
	}
	if task.Completed {
		t.Error("New task must start with completed=false")
	}
	if task.Timestamp < before || task.Timestamp > time.Now().UnixMilli() {
		t.Errorf("Timestamp %d is not a server-assigned creation time", task.Timestamp)
	}

	tasks, err := ts.List("u1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	got := tasks[task.ID]
	if got.Text != "Buy milk" || got.Completed || got.Timestamp != task.Timestamp {
		t.Errorf("Unexpected record: %+v", got)
	}
}

func TestTaskStore_CreateEmptyText(t *testing.T) {
	st := NewMemStore(nil, nil)
	ts := NewTaskStore(st)

	if _, err := ts.Create("u1", ""); err != ErrEmptyText {
		t.Fatalf("Expected ErrEmptyText, got %v", err)
	}

	// The failed create must not touch the store.
	if namespaces, _ := st.Namespaces(); len(namespaces) != 0 {
		t.Errorf("Rejected create mutated the store: %v", namespaces)
	}
}

func TestTaskStore_ListEmpty(t *testing.T) {
	ts := NewTaskStore(NewMemStore(nil, nil))

	tasks, err := ts.List("nobody")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if tasks == nil {
		t.Fatal("List must return an empty map, not nil")
	}
	if len(tasks) != 0 {
		t.Errorf("Expected no tasks, got %d", len(tasks))
	}
}

func TestTaskStore_NamespaceIsolation(t *testing.T) {
	ts := NewTaskStore(NewMemStore(nil, nil))

	mine, _ := ts.Create("u1", "mine")
	ts.Create("u2", "theirs")

	tasks, _ := ts.List("u1")
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	if _, ok := tasks[mine.ID]; !ok {
		t.Error("Own task missing from list")
	}
	for id, task := range tasks {
		if task.Text == "theirs" {
			t.Errorf("Task %s from another user leaked into list", id)
		}
	}
}

func TestTaskStore_SetCompleted(t *testing.T) {
	ts := NewTaskStore(NewMemStore(nil, nil))

	task, _ := ts.Create("u1", "toggle me")
	if err := ts.SetCompleted("u1", task.ID, true); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}

	tasks, _ := ts.List("u1")
	got := tasks[task.ID]
	if !got.Completed {
		t.Error("Expected completed=true")
	}
	if got.Text != "toggle me" || got.Timestamp != task.Timestamp {
		t.Errorf("SetCompleted must only touch the completed flag, got %+v", got)
	}
}

func TestTaskStore_SetCompletedMissingTask(t *testing.T) {
	ts := NewTaskStore(NewMemStore(nil, nil))

	if err := ts.SetCompleted("u1", "no-such-task", true); err != nil {
		t.Fatalf("Update on a missing id must succeed, got %v", err)
	}
	tasks, _ := ts.List("u1")
	if len(tasks) != 0 {
		t.Errorf("Update on a missing id must not create a record, got %d", len(tasks))
	}
}

func TestTaskStore_DeleteIdempotent(t *testing.T) {
	ts := NewTaskStore(NewMemStore(nil, nil))

	task, _ := ts.Create("u1", "remove me")
	if err := ts.Delete("u1", task.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := ts.Delete("u1", task.ID); err != nil {
		t.Fatalf("Second delete must succeed, got %v", err)
	}

	tasks, _ := ts.List("u1")
	if len(tasks) != 0 {
		t.Errorf("Expected no tasks after delete, got %d", len(tasks))
	}
}

func TestTaskStore_SurvivesJSONRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	p, _ := NewPersistence(tmpDir)

	st := NewMemStore(nil, p)
	task, _ := NewTaskStore(st).Create("u1", "durable")
	st.Wait()

	p2, _ := NewPersistence(tmpDir)
	loaded, err := p2.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	ts2 := NewTaskStore(NewMemStore(loaded, nil))

	tasks, err := ts2.List("u1")
	if err != nil {
		t.Fatalf("List after reload failed: %v", err)
	}
	got := tasks[task.ID]
	if got.Text != "durable" || got.Completed || got.Timestamp != task.Timestamp {
		t.Errorf("Record changed across persistence round trip: %+v", got)
	}

	// Completion updates must work on reloaded (JSON-decoded) records too.
	if err := ts2.SetCompleted("u1", task.ID, true); err != nil {
		t.Fatalf("SetCompleted after reload failed: %v", err)
	}
	tasks, _ = ts2.List("u1")
	if !tasks[task.ID].Completed {
		t.Error("Expected completed=true after reload update")
	}
}

func TestTaskListMarshalOmitsID(t *testing.T) {
	ts := NewTaskStore(NewMemStore(nil, nil))
	task, _ := ts.Create("u1", "wire shape")

	tasks, _ := ts.List("u1")
	b, err := json.Marshal(tasks)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]map[string]any
	json.Unmarshal(b, &decoded)
	rec := decoded[task.ID]
	if rec == nil {
		t.Fatalf("Task %s missing from wire form", task.ID)
	}
	if _, ok := rec["id"]; ok {
		t.Error("List values must not repeat the id; it is the map key")
	}
}
