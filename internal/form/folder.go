package form

import (
	"strings"

	"dms-go/internal/model"
)

// FolderForm names a new folder or renames an existing one.
type FolderForm struct {
	id       int64
	original string
	name     string
}

func NewFolderForm() *FolderForm {
	return &FolderForm{}
}

func RenameFolderForm(folder model.Folder) *FolderForm {
	return &FolderForm{id: folder.ID, original: folder.Name, name: folder.Name}
}

// FolderID is 0 for a new folder.
func (f *FolderForm) FolderID() int64 { return f.id }

func (f *FolderForm) SetName(name string) { f.name = name }

// Name returns the trimmed name.
func (f *FolderForm) Name() string { return strings.TrimSpace(f.name) }

// Dirty is only true when the trimmed name differs from the current one.
func (f *FolderForm) Dirty() bool {
	return f.Name() != strings.TrimSpace(f.original)
}

func (f *FolderForm) Validate() error {
	if f.Name() == "" {
		return ValidationErrors{{Field: FieldName, Message: "folder name is required"}}
	}
	return nil
}

// Request validates the form and returns the body to send.
func (f *FolderForm) Request() (model.FolderRequest, error) {
	if err := f.Validate(); err != nil {
		return model.FolderRequest{}, err
	}
	if !f.Dirty() {
		return model.FolderRequest{}, ErrUnchanged
	}
	return model.FolderRequest{Name: f.Name()}, nil
}
