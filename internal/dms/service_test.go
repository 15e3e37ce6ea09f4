package dms_test

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dms-go/internal/dms"
	"dms-go/internal/form"
	"dms-go/internal/model"
	"dms-go/internal/testutil"
)

func paths(reqs []testutil.RecordedRequest) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func TestService_Signup(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	var verrs form.ValidationErrors
	require.ErrorAs(t, e.service.Signup(ctx, "al", "123"), &verrs)
	assert.Empty(t, e.backend.Requests(), "invalid input never reaches the backend")

	require.ErrorAs(t, e.service.Signup(ctx, "alice", "another"), &verrs)
	fe, ok := verrs.Field(form.FieldUsername)
	require.True(t, ok)
	assert.Contains(t, fe.Message, "taken")

	require.NoError(t, e.service.Signup(ctx, "bobby", "secret1"))
	_, err := e.session.Login(ctx, "bobby", "secret1")
	assert.NoError(t, err)
}

func TestService_SaveDocumentReloadsListing(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()
	mark := len(e.backend.Requests())

	f := form.NewDocumentForm()
	require.NoError(t, f.SetTitle("Minutes"))
	require.NoError(t, f.SetContent("agreed on everything"))
	require.NoError(t, f.SetStarred(true))

	saved, docs, err := e.service.SaveDocument(ctx, f, dms.StarredDocuments())
	require.NoError(t, err)
	assert.Equal(t, "Minutes", saved.Title)
	require.Len(t, docs, 1)
	assert.Equal(t, saved.ID, docs[0].ID)
	assert.Equal(t, form.ModeView, f.Mode())

	assert.Equal(t, []string{"POST /documents", "GET /documents/starred"}, paths(e.backend.Requests()[mark:]))
}

func TestService_SaveDocumentFailureSkipsReload(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()

	f := form.NewDocumentForm()
	require.NoError(t, f.SetTitle("Minutes"))
	require.NoError(t, f.SetContent("text"))

	e.backend.FailNext(http.StatusInternalServerError, "database down")
	mark := len(e.backend.Requests())

	_, docs, err := e.service.SaveDocument(ctx, f, dms.AllDocuments())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database down")
	assert.Nil(t, docs)
	assert.Equal(t, []string{"POST /documents"}, paths(e.backend.Requests()[mark:]))

	assert.Equal(t, form.ModeCreate, f.Mode())
	assert.Equal(t, "Minutes", f.Draft().Title, "draft survives a failed save")
}

func TestService_EditDocumentAttachments(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()

	a := e.backend.AddFile("a.txt", "text/plain", []byte("a"))
	b := e.backend.AddFile("b.txt", "text/plain", []byte("b"))
	doc := e.backend.AddDocument(model.Document{Title: "Doc", Content: "body", Files: []model.FileAttachment{a, b}})

	loaded, err := e.service.Document(ctx, doc.ID)
	require.NoError(t, err)

	f := form.OpenDocument(loaded)
	require.NoError(t, f.Edit())
	require.NoError(t, f.Detach(a.ID))
	require.NoError(t, f.Attach(form.FileFromBytes("c.pdf", "application/pdf", []byte("%PDF-1.4"))))

	saved, _, err := e.service.SaveDocument(ctx, f, dms.AllDocuments())
	require.NoError(t, err)

	require.Len(t, saved.Files, 2)
	assert.Equal(t, b.ID, saved.Files[0].ID)
	assert.Equal(t, "c.pdf", saved.Files[1].OriginalFileName)

	req := e.backend.RequestsTo(http.MethodPut, "/documents/"+itoa(doc.ID))
	require.Len(t, req, 1)
	assert.True(t, req[0].Multipart())
	assert.Len(t, req[0].Files, 1)
}

func TestService_DeleteDocument(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()

	d1 := e.backend.AddDocument(model.Document{Title: "one"})
	e.backend.AddDocument(model.Document{Title: "two"})

	docs, err := e.service.DeleteDocument(ctx, d1.ID, dms.AllDocuments())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "two", docs[0].Title)

	_, err = e.service.DeleteDocument(ctx, d1.ID, dms.AllDocuments())
	assert.ErrorIs(t, err, dms.ErrNotFound)
}

func TestService_Documents(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()

	folder := e.backend.AddFolder("F")
	e.backend.AddDocument(model.Document{Title: "in folder", FolderID: &folder.ID})
	e.backend.AddDocument(model.Document{Title: "loose"})

	tests := []struct {
		listing dms.Listing
		want    int
	}{
		{listing: dms.AllDocuments(), want: 2},
		{listing: dms.StarredDocuments(), want: 0},
		{listing: dms.RecentDocuments(), want: 2},
		{listing: dms.FolderListing(folder.ID), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.listing.String(), func(t *testing.T) {
			docs, err := e.service.Documents(ctx, tt.listing)
			require.NoError(t, err)
			assert.Len(t, docs, tt.want)
		})
	}

	_, err := e.service.Documents(ctx, dms.Listing{Kind: 42})
	assert.Error(t, err)
}

func TestService_Folders(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()

	f := form.NewFolderForm()
	f.SetName(" Invoices ")
	folder, folders, err := e.service.SaveFolder(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, "Invoices", folder.Name)
	require.Len(t, folders, 1)

	rename := form.RenameFolderForm(*folder)
	_, _, err = e.service.SaveFolder(ctx, rename)
	assert.ErrorIs(t, err, form.ErrUnchanged)

	rename.SetName("Receipts")
	_, folders, err = e.service.SaveFolder(ctx, rename)
	require.NoError(t, err)
	assert.Equal(t, "Receipts", folders[0].Name)

	folders, err = e.service.DeleteFolder(ctx, folder.ID)
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestService_Files(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()

	_, err := e.service.UploadFile(ctx, form.FileFromBytes("run.exe", "application/x-msdownload", []byte("MZ")), nil)
	var verrs form.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	up, err := e.service.UploadFile(ctx, form.FileFromBytes("photo.png", "image/png", []byte("\x89PNG\r\n\x1a\n")), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	d, err := e.service.DownloadFile(ctx, up.ID, &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, "photo.png", d.FileName)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), buf.Bytes())

	att := e.backend.AddFile("x.txt", "text/plain", []byte("x"))
	doc := e.backend.AddDocument(model.Document{Title: "with file", Files: []model.FileAttachment{att}})

	reloaded, err := e.service.DeleteFile(ctx, att.ID, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Files)

	none, err := e.service.DeleteFile(ctx, up.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestService_Posts(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()

	f := form.NewPostForm()
	require.NoError(t, f.SetTitle("Hello"))
	require.NoError(t, f.SetContent("World"))
	post, err := e.service.SavePost(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, form.ModeEdit, f.Mode())

	page, err := e.service.Posts(ctx, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "page=0&size=10&sort=createdAt%2Cdesc", e.backend.LastRequest().Query)
	require.Len(t, page.Content, 1)

	got, err := e.service.Post(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)

	mark := len(e.backend.Requests())
	page, err = e.service.DeletePost(ctx, post.ID, 5)
	require.NoError(t, err)
	assert.True(t, page.Empty)
	assert.Equal(t, []string{"DELETE /posts/" + itoa(post.ID), "GET /posts"}, paths(e.backend.Requests()[mark:]))
}

func TestService_Comments(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()
	post := e.backend.AddPost(model.Post{Title: "p", Content: "c"})

	comments, err := e.service.SaveComment(ctx, func() *form.CommentForm {
		f := form.NewCommentForm(post.ID)
		f.SetContent("first!")
		return f
	}())
	require.NoError(t, err)
	require.Len(t, comments, 1)

	edit := form.EditCommentForm(comments[0])
	edit.SetContent("second")
	comments, err = e.service.SaveComment(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, "second", comments[0].Content)

	comments, err = e.service.DeleteComment(ctx, comments[0].ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
