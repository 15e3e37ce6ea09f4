package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an entity id that decodes from a JSON number or a numeric string.
// Some backend responses send ids as strings. It always encodes
// as a number.
type ID int64

func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("id: %w", err)
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("id must be an integer, got %s", data)
	}
	*id = ID(n)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(id), 10), nil
}

// UnmarshalJSON reads folderId through ID so documents decode whether the
// backend sends it as a number or a string.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	aux := struct {
		*plain
		FolderID *ID `json:"folderId"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.FolderID = (*int64)(aux.FolderID)
	return nil
}
