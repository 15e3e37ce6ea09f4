package app

import "time"

// Operation is the CLI command an app was created for. Its outcome is
// logged when the app closes.
type Operation struct {
	ID        string
	Name      string
	StartedAt time.Time
	Status    string // "success" or "error"
}

// NewOperation creates an operation that has not failed yet.
func NewOperation(name string, startedAt time.Time) *Operation {
	return &Operation{
		ID:        startedAt.UTC().Format("20060102T150405Z"),
		Name:      name,
		StartedAt: startedAt,
		Status:    "success",
	}
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = "error"
}

// Failed reports whether Fail was called.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
