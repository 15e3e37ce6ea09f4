package form_test

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dms-go/internal/form"
	"dms-go/internal/model"
)

type postSubmitter struct {
	created []*model.PostPayload
	updated map[int64]*model.PostPayload
	result  *model.Post
}

func (s *postSubmitter) CreatePost(_ context.Context, p *model.PostPayload) (*model.Post, error) {
	s.created = append(s.created, p)
	return s.result, nil
}

func (s *postSubmitter) UpdatePost(_ context.Context, id int64, p *model.PostPayload) (*model.Post, error) {
	if s.updated == nil {
		s.updated = make(map[int64]*model.PostPayload)
	}
	s.updated[id] = p
	return s.result, nil
}

func TestPostForm_AcceptsImages(t *testing.T) {
	f := form.NewPostForm()
	require.NoError(t, f.Attach(form.FileFromBytes("photo.jpg", "image/jpeg", []byte{0xff, 0xd8, 0xff})))
	require.NoError(t, f.Attach(form.FileFromBytes("notes.pdf", mimePDF, []byte("%PDF"))))

	err := f.Attach(form.FileFromBytes("anim.gif", "image/gif", []byte("GIF89a")))
	var verrs form.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestPostForm_SubmitEdit(t *testing.T) {
	post := &model.Post{
		ID:      5,
		Title:   "Hello",
		Content: "World",
		Files:   []model.FileAttachment{{ID: 1}, {ID: 2}},
	}
	f := form.EditPost(post)
	assert.Equal(t, form.ModeEdit, f.Mode())
	assert.False(t, f.Dirty())

	require.NoError(t, f.Detach(2))
	saved := *post
	saved.Files = post.Files[:1]
	sub := &postSubmitter{result: &saved}

	_, err := f.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.Contains(t, sub.updated, int64(5))
	assert.Equal(t, []int64{1}, sub.updated[5].Request.FileIDs)
	assert.False(t, f.Dirty())
}

func TestPostForm_CreateRequiresTitleAndContent(t *testing.T) {
	f := form.NewPostForm()
	f.SetTitle("Hello")

	_, err := f.Submit(context.Background(), &postSubmitter{})
	var verrs form.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	_, ok := verrs.Field(form.FieldContent)
	assert.True(t, ok)
}

func TestFolderForm(t *testing.T) {
	t.Run("new folder needs a name", func(t *testing.T) {
		f := form.NewFolderForm()
		f.SetName("   ")
		_, err := f.Request()
		var verrs form.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("new folder trims", func(t *testing.T) {
		f := form.NewFolderForm()
		f.SetName("  Invoices ")
		req, err := f.Request()
		require.NoError(t, err)
		assert.Equal(t, "Invoices", req.Name)
	})

	t.Run("rename only when trimmed name changes", func(t *testing.T) {
		f := form.RenameFolderForm(model.Folder{ID: 3, Name: "Invoices"})
		f.SetName(" Invoices ")
		assert.False(t, f.Dirty())
		_, err := f.Request()
		assert.ErrorIs(t, err, form.ErrUnchanged)

		f.SetName("Receipts")
		req, err := f.Request()
		require.NoError(t, err)
		assert.Equal(t, "Receipts", req.Name)
		assert.Equal(t, int64(3), f.FolderID())
	})
}

func TestCommentForm(t *testing.T) {
	tests := []struct {
		name    string
		form    *form.CommentForm
		content string
		wantErr error
		want    model.CommentRequest
	}{
		{
			name:    "new comment",
			form:    form.NewCommentForm(9),
			content: " nice post ",
			want:    model.CommentRequest{PostID: 9, Content: "nice post"},
		},
		{
			name:    "blank comment",
			form:    form.NewCommentForm(9),
			content: "  ",
			wantErr: form.ValidationErrors{},
		},
		{
			name:    "missing post",
			form:    form.NewCommentForm(0),
			content: "hello",
			wantErr: form.ValidationErrors{},
		},
		{
			name:    "unchanged edit",
			form:    form.EditCommentForm(model.Comment{ID: 2, PostID: 9, Content: "hello"}),
			content: "hello ",
			wantErr: form.ErrUnchanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.form.SetContent(tt.content)
			got, err := tt.form.Request()
			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			case form.ValidationErrors:
				assert.ErrorAs(t, err, &want)
			default:
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestValidateSignup(t *testing.T) {
	assert.NoError(t, form.ValidateSignup("alice", "secret"))

	var verrs form.ValidationErrors
	require.ErrorAs(t, form.ValidateSignup("bob", "12345"), &verrs)
	assert.Len(t, verrs, 2)
	_, ok := verrs.Field(form.FieldUsername)
	assert.True(t, ok)
	_, ok = verrs.Field(form.FieldPassword)
	assert.True(t, ok)
}

func TestFileFromPath_DetectsContentType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n"), 0644))

	u, err := form.FileFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", u.Name)
	assert.Equal(t, "application/pdf", u.ContentType)
	assert.Nil(t, form.CheckDocumentFile(u))

	rc, err := u.Open()
	require.NoError(t, err)
	rc.Close()

	_, err = form.FileFromPath(dir)
	assert.Error(t, err)
}

// plainZip is a zip archive without any office part in its first entry.
func plainZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("quarterly notes"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// bareOLE is a compound file header whose directory lies past the data.
func bareOLE() []byte {
	data := make([]byte, 512)
	copy(data, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	return data
}

func TestFileFromBytes_NarrowsOfficeContainers(t *testing.T) {
	zipped := plainZip(t)
	ole := bareOLE()

	tests := []struct {
		name     string
		file     string
		data     []byte
		want     string
		accepted bool
	}{
		{name: "zip named docx", file: "report.docx", data: zipped,
			want: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", accepted: true},
		{name: "zip named xlsx", file: "budget.XLSX", data: zipped,
			want: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", accepted: true},
		{name: "ole named doc", file: "letter.doc", data: ole, want: "application/msword", accepted: true},
		{name: "ole named xls", file: "sheet.xls", data: ole, want: "application/vnd.ms-excel", accepted: true},
		{name: "zip named doc", file: "letter.doc", data: zipped, want: "application/zip"},
		{name: "ole named docx", file: "report.docx", data: ole, want: "application/x-ole-storage"},
		{name: "zip named zip", file: "archive.zip", data: zipped, want: "application/zip"},
		{name: "text named doc", file: "notes.doc", data: []byte("just text"), want: "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := form.FileFromBytes(tt.file, "", tt.data)
			assert.Equal(t, tt.want, u.ContentType)
			if tt.accepted {
				assert.Nil(t, form.CheckDocumentFile(u))
			} else {
				assert.NotNil(t, form.CheckDocumentFile(u))
			}
		})
	}
}

func TestFileFromPath_NarrowsOfficeContainers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")
	require.NoError(t, os.WriteFile(path, plainZip(t), 0644))

	u, err := form.FileFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", u.ContentType)
	assert.Nil(t, form.CheckDocumentFile(u))
}
