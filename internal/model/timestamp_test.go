package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "rfc3339 with zone",
			input: `"2024-03-01T09:15:00Z"`,
			want:  time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC),
		},
		{
			name:  "local date-time",
			input: `"2024-03-01T09:15:00"`,
			want:  time.Date(2024, 3, 1, 9, 15, 0, 0, time.Local),
		},
		{
			name:  "local date-time with fraction",
			input: `"2024-03-01T09:15:00.123456"`,
			want:  time.Date(2024, 3, 1, 9, 15, 0, 123456000, time.Local),
		},
		{
			name:  "null",
			input: `null`,
		},
		{
			name:    "number",
			input:   `1709284500`,
			wantErr: true,
		},
		{
			name:    "garbage string",
			input:   `"yesterday"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.input), &ts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !ts.Time.Equal(tt.want) {
				t.Errorf("Unmarshal() = %v, want %v", ts.Time, tt.want)
			}
		})
	}
}

func TestDocument_DecodesBackendShape(t *testing.T) {
	body := `{
		"id": 7,
		"title": "Report",
		"content": "Q1 results",
		"createdBy": {"id": 1, "username": "alice"},
		"createdAt": "2024-03-01T09:15:00",
		"updatedAt": "2024-03-02T10:00:00",
		"files": [{"id": 3, "originalFileName": "a.pdf", "fileSize": 120}],
		"folderId": null,
		"isStarred": true
	}`

	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if doc.FolderID != nil {
		t.Errorf("FolderID = %v, want nil", *doc.FolderID)
	}
	if !doc.IsStarred {
		t.Error("IsStarred = false, want true")
	}
	if got := doc.FileIDs(); len(got) != 1 || got[0] != 3 {
		t.Errorf("FileIDs() = %v, want [3]", got)
	}
	if doc.CreatedBy == nil || doc.CreatedBy.Username != "alice" {
		t.Errorf("CreatedBy = %+v, want alice", doc.CreatedBy)
	}
}

func TestDocumentRequest_EncodesNullFolder(t *testing.T) {
	req := DocumentRequest{Title: "Report", Content: "Q1 results", RemainingFileIDs: []int64{}}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"title":"Report","content":"Q1 results","remainingFileIds":[],"isStarred":false,"folderId":null}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
