// Package schema defines the wire-level data structures shared by the
// taskdock server, SDK, and CLI.
package schema

// Task is a single task record owned by exactly one user.
// The ID is assigned by the store on creation; Text and Timestamp are
// immutable afterwards — only Completed can change.
type Task struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Timestamp int64  `json:"timestamp"` // creation time, Unix milliseconds, server-assigned
}

// Principal is the identity resolved from a verified bearer token.
// It is re-resolved on every request and never cached server-side.
type Principal struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}
