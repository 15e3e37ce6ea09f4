package app

import (
	"testing"
	"time"
)

func TestNewOperation(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		started time.Time
		wantID  string
	}{
		{
			name:    "utc start",
			op:      "DocCreate",
			started: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			wantID:  "20240115T103000Z",
		},
		{
			name:    "local start is normalised to utc",
			op:      "Login",
			started: time.Date(2024, 1, 15, 12, 30, 0, 0, time.FixedZone("CEST", 2*3600)),
			wantID:  "20240115T103000Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation(tt.op, tt.started)

			if op.Name != tt.op {
				t.Errorf("Name = %q, want %q", op.Name, tt.op)
			}
			if op.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", op.ID, tt.wantID)
			}
			if op.Status != "success" {
				t.Errorf("Status = %q, want %q", op.Status, "success")
			}
			if op.Failed() {
				t.Error("Failed() = true for a fresh operation")
			}
		})
	}
}

func TestOperation_Fail(t *testing.T) {
	op := NewOperation("DocDelete", time.Now())
	op.Fail()

	if !op.Failed() {
		t.Error("Failed() = false after Fail()")
	}
	if op.Status != "error" {
		t.Errorf("Status = %q, want %q", op.Status, "error")
	}
}
