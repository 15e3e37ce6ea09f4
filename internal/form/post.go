package form

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"dms-go/internal/model"
)

// PostSubmitter sends a finished post draft to the backend.
type PostSubmitter interface {
	CreatePost(ctx context.Context, p *model.PostPayload) (*model.Post, error)
	UpdatePost(ctx context.Context, id int64, p *model.PostPayload) (*model.Post, error)
}

// PostForm holds the draft of a board post. Posts have no view mode: a form
// is either creating a post or editing one.
type PostForm struct {
	mu         sync.Mutex
	mode       Mode
	seed       model.Post
	title      string
	content    string
	files      attachments
	submitting bool
}

func NewPostForm() *PostForm {
	return &PostForm{mode: ModeCreate}
}

// EditPost returns a form in edit mode seeded from p.
func EditPost(p *model.Post) *PostForm {
	f := &PostForm{mode: ModeEdit}
	f.seedFrom(p)
	return f
}

func (f *PostForm) seedFrom(p *model.Post) {
	f.seed = *p
	f.seed.Files = append([]model.FileAttachment(nil), p.Files...)
	f.title = p.Title
	f.content = p.Content
	f.files.reset(p.Files)
}

func (f *PostForm) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

func (f *PostForm) SetTitle(title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInFlight
	}
	f.title = title
	return nil
}

func (f *PostForm) SetContent(content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInFlight
	}
	f.content = content
	return nil
}

// Attach adds image or document files to the draft; see DocumentForm.Attach.
func (f *PostForm) Attach(files ...model.Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInFlight
	}
	return f.files.add(CheckPostFile, files)
}

func (f *PostForm) Detach(fileID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInFlight
	}
	return f.files.detach(fileID)
}

func (f *PostForm) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty()
}

func (f *PostForm) dirty() bool {
	return f.title != f.seed.Title || f.content != f.seed.Content || f.files.changed()
}

func (f *PostForm) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validate()
}

func (f *PostForm) validate() error {
	var errs ValidationErrors
	if fe := checkTitle(f.title); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := checkContent(f.content, 0); fe != nil {
		errs = append(errs, *fe)
	}
	errs = append(errs, f.files.check(CheckPostFile)...)
	return errs.orNil()
}

// Submit creates or updates the post. On success the form is reseeded from
// the saved post and stays in edit mode.
func (f *PostForm) Submit(ctx context.Context, sub PostSubmitter) (*model.Post, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if err := f.validate(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if !f.dirty() {
		f.mu.Unlock()
		return nil, ErrUnchanged
	}
	p := &model.PostPayload{
		Request: model.PostRequest{
			Title:   strings.TrimSpace(f.title),
			Content: strings.TrimSpace(f.content),
			FileIDs: f.files.retainedIDs(),
		},
		Files: f.files.pendingCopy(),
	}
	mode, id := f.mode, f.seed.ID
	f.submitting = true
	f.mu.Unlock()

	var saved *model.Post
	var err error
	if mode == ModeCreate {
		saved, err = sub.CreatePost(ctx, p)
	} else {
		saved, err = sub.UpdatePost(ctx, id, p)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		return nil, fmt.Errorf("failed to save post: %w", err)
	}
	if saved == nil {
		return nil, fmt.Errorf("failed to save post: empty response")
	}
	f.seedFrom(saved)
	f.mode = ModeEdit
	return saved, nil
}
