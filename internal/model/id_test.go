package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{name: "number", input: `3`, want: 3},
		{name: "numeric string", input: `"3"`, want: 3},
		{name: "null", input: `null`, want: 0},
		{name: "empty string", input: `""`, wantErr: true},
		{name: "word", input: `"three"`, wantErr: true},
		{name: "fraction", input: `3.5`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.input), &id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && id != tt.want {
				t.Errorf("Unmarshal() = %d, want %d", id, tt.want)
			}
		})
	}
}

func TestID_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		FolderID ID `json:"folderId"`
	}{FolderID: 42})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"folderId":42}` {
		t.Errorf("Marshal() = %s, want %s", data, `{"folderId":42}`)
	}
}

func TestDocument_FolderIDForms(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  *int64
	}{
		{name: "number", field: `3`, want: ptrInt64(3)},
		{name: "string", field: `"3"`, want: ptrInt64(3)},
		{name: "null", field: `null`},
		{name: "absent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"id":7,"title":"Report","createdAt":"2024-03-01T09:15:00","files":[]`
			if tt.field != "" {
				body += `,"folderId":` + tt.field
			}
			body += `}`

			var doc Document
			if err := json.Unmarshal([]byte(body), &doc); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if doc.ID != 7 || doc.Title != "Report" || doc.CreatedAt.IsZero() {
				t.Errorf("Unmarshal() lost fields: %+v", doc)
			}
			switch {
			case tt.want == nil && doc.FolderID != nil:
				t.Errorf("FolderID = %d, want nil", *doc.FolderID)
			case tt.want != nil && (doc.FolderID == nil || *doc.FolderID != *tt.want):
				t.Errorf("FolderID = %v, want %d", doc.FolderID, *tt.want)
			}

			out, err := json.Marshal(doc)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if tt.want != nil && !strings.Contains(string(out), `"folderId":3`) {
				t.Errorf("Marshal() = %s, want folderId encoded as a number", out)
			}
		})
	}
}

func ptrInt64(v int64) *int64 { return &v }
