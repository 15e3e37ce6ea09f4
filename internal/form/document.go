package form

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"dms-go/internal/model"
)

// Mode is the state a form is in.
type Mode int

const (
	ModeCreate Mode = iota
	ModeView
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeView:
		return "view"
	case ModeEdit:
		return "edit"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DocumentSubmitter sends a finished draft to the backend.
type DocumentSubmitter interface {
	CreateDocument(ctx context.Context, p *model.DocumentPayload) (*model.Document, error)
	UpdateDocument(ctx context.Context, id int64, p *model.DocumentPayload) (*model.Document, error)
}

// DocumentDraft is a snapshot of a document form's editable state.
type DocumentDraft struct {
	Title    string
	Content  string
	Starred  bool
	FolderID *int64
	Retained []model.FileAttachment
	Pending  []model.Upload
}

// DocumentForm holds the draft of a document being created, viewed or edited.
//
// A form opened on an existing document starts in view mode and must be
// switched to edit mode before any field changes. Cancel reverts every field
// to the document it was opened on. The form is safe for concurrent use.
type DocumentForm struct {
	mu         sync.Mutex
	mode       Mode
	seed       model.Document
	title      string
	content    string
	starred    bool
	folderID   *int64
	files      attachments
	submitting bool
}

// NewDocumentForm returns an empty form in create mode.
func NewDocumentForm() *DocumentForm {
	return &DocumentForm{mode: ModeCreate}
}

// OpenDocument returns a form in view mode seeded from doc.
func OpenDocument(doc *model.Document) *DocumentForm {
	f := &DocumentForm{mode: ModeView}
	f.seedFrom(doc)
	return f
}

func (f *DocumentForm) seedFrom(doc *model.Document) {
	f.seed = *doc
	f.seed.Files = append([]model.FileAttachment(nil), doc.Files...)
	f.seed.FolderID = copyID(doc.FolderID)
	f.revert()
}

func (f *DocumentForm) revert() {
	f.title = f.seed.Title
	f.content = f.seed.Content
	f.starred = f.seed.IsStarred
	f.folderID = copyID(f.seed.FolderID)
	f.files.reset(f.seed.Files)
}

// Mode returns the form's current mode.
func (f *DocumentForm) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// DocumentID returns the id of the document the form was opened on, or 0 in create mode.
func (f *DocumentForm) DocumentID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seed.ID
}

// Draft returns a copy of the current draft.
func (f *DocumentForm) Draft() DocumentDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return DocumentDraft{
		Title:    f.title,
		Content:  f.content,
		Starred:  f.starred,
		FolderID: copyID(f.folderID),
		Retained: f.files.retainedCopy(),
		Pending:  f.files.pendingCopy(),
	}
}

// Submitting reports whether a submit is in flight.
func (f *DocumentForm) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Edit switches a viewed document into edit mode. Forms in create or edit
// mode are already editable and are left alone.
func (f *DocumentForm) Edit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInFlight
	}
	if f.mode == ModeView {
		f.mode = ModeEdit
	}
	return nil
}

// Cancel discards the draft. An edited document goes back to view mode with
// every field, removal and addition reverted; a create form is emptied.
func (f *DocumentForm) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInFlight
	}
	f.revert()
	if f.mode == ModeEdit {
		f.mode = ModeView
	}
	return nil
}

func (f *DocumentForm) mutable() error {
	if f.submitting {
		return ErrSubmitInFlight
	}
	if f.mode == ModeView {
		return ErrReadOnly
	}
	return nil
}

func (f *DocumentForm) SetTitle(title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	f.title = title
	return nil
}

func (f *DocumentForm) SetContent(content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	f.content = content
	return nil
}

func (f *DocumentForm) SetStarred(starred bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	f.starred = starred
	return nil
}

// SetFolder moves the draft into a folder; nil means no folder.
func (f *DocumentForm) SetFolder(folderID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	f.folderID = copyID(folderID)
	return nil
}

// Attach adds new files to the draft. If any file is rejected none are added
// and the returned ValidationErrors names every rejected file.
func (f *DocumentForm) Attach(files ...model.Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	return f.files.add(CheckDocumentFile, files)
}

// Detach removes an existing attachment from the draft. The file is only
// dropped from the document when the draft is saved.
func (f *DocumentForm) Detach(fileID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	return f.files.detach(fileID)
}

// DropPending removes the index'th newly attached file.
func (f *DocumentForm) DropPending(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	return f.files.dropPending(index)
}

// Dirty reports whether any tracked field differs from the seed.
func (f *DocumentForm) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty()
}

func (f *DocumentForm) dirty() bool {
	return f.title != f.seed.Title ||
		f.content != f.seed.Content ||
		f.starred != f.seed.IsStarred ||
		!sameID(f.folderID, f.seed.FolderID) ||
		f.files.changed()
}

// Validate returns ValidationErrors for every failing field, or nil.
func (f *DocumentForm) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validate()
}

func (f *DocumentForm) validate() error {
	var errs ValidationErrors
	if fe := checkTitle(f.title); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := checkContent(f.content, MaxContentLength); fe != nil {
		errs = append(errs, *fe)
	}
	errs = append(errs, f.files.check(CheckDocumentFile)...)
	return errs.orNil()
}

// CanSave reports whether Submit would send the draft.
func (f *DocumentForm) CanSave() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode != ModeView && !f.submitting && f.dirty() && f.validate() == nil
}

// Payload validates the draft and builds the request it would submit.
func (f *DocumentForm) Payload() (*model.DocumentPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return nil, err
	}
	return f.payload(), nil
}

func (f *DocumentForm) ready() error {
	if f.submitting {
		return ErrSubmitInFlight
	}
	if f.mode == ModeView {
		return ErrReadOnly
	}
	if err := f.validate(); err != nil {
		return err
	}
	if !f.dirty() {
		return ErrUnchanged
	}
	return nil
}

func (f *DocumentForm) payload() *model.DocumentPayload {
	return &model.DocumentPayload{
		Request: model.DocumentRequest{
			Title:            strings.TrimSpace(f.title),
			Content:          strings.TrimSpace(f.content),
			RemainingFileIDs: f.files.retainedIDs(),
			IsStarred:        f.starred,
			FolderID:         copyID(f.folderID),
		},
		Files: f.files.pendingCopy(),
	}
}

// Submit sends the draft. Create forms create a document, edit forms replace
// the one they were opened on. On success the form is reseeded from the
// saved document and returns to view mode; on failure the draft is kept.
func (f *DocumentForm) Submit(ctx context.Context, sub DocumentSubmitter) (*model.Document, error) {
	f.mu.Lock()
	if err := f.ready(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	p := f.payload()
	mode, id := f.mode, f.seed.ID
	f.submitting = true
	f.mu.Unlock()

	var saved *model.Document
	var err error
	if mode == ModeCreate {
		saved, err = sub.CreateDocument(ctx, p)
	} else {
		saved, err = sub.UpdateDocument(ctx, id, p)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	if saved == nil {
		return nil, fmt.Errorf("failed to save document: empty response")
	}
	f.seedFrom(saved)
	f.mode = ModeView
	return saved, nil
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
