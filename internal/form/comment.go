package form

import (
	"strings"

	"dms-go/internal/model"
)

// CommentForm writes a new comment on a post or edits an existing one.
type CommentForm struct {
	id       int64
	postID   int64
	original string
	content  string
}

func NewCommentForm(postID int64) *CommentForm {
	return &CommentForm{postID: postID}
}

func EditCommentForm(c model.Comment) *CommentForm {
	return &CommentForm{id: c.ID, postID: c.PostID, original: c.Content, content: c.Content}
}

// CommentID is 0 for a new comment.
func (f *CommentForm) CommentID() int64 { return f.id }

func (f *CommentForm) SetContent(content string) { f.content = content }

func (f *CommentForm) Validate() error {
	var errs ValidationErrors
	if f.postID <= 0 {
		errs = append(errs, FieldError{Field: FieldPostID, Message: "post is required"})
	}
	if strings.TrimSpace(f.content) == "" {
		errs = append(errs, FieldError{Field: FieldContent, Message: "comment must not be empty"})
	}
	return errs.orNil()
}

// Request validates the form and returns the body to send. Editing a
// comment without changing it is refused with ErrUnchanged.
func (f *CommentForm) Request() (model.CommentRequest, error) {
	if err := f.Validate(); err != nil {
		return model.CommentRequest{}, err
	}
	content := strings.TrimSpace(f.content)
	if f.id != 0 && content == strings.TrimSpace(f.original) {
		return model.CommentRequest{}, ErrUnchanged
	}
	return model.CommentRequest{PostID: f.postID, Content: content}, nil
}
