package dms

import (
	"context"
	"io"

	"dms-go/internal/form"
	"dms-go/internal/model"
)

// Backend is the REST API the service layer drives. *api.Client implements it.
type Backend interface {
	Authenticator
	form.DocumentSubmitter
	form.PostSubmitter

	Signup(ctx context.Context, username, password string) error
	UsernameTaken(ctx context.Context, username string) (bool, error)

	ListDocuments(ctx context.Context) ([]model.Document, error)
	StarredDocuments(ctx context.Context) ([]model.Document, error)
	RecentDocuments(ctx context.Context) ([]model.Document, error)
	FolderDocuments(ctx context.Context, folderID int64) ([]model.Document, error)
	GetDocument(ctx context.Context, id int64) (*model.Document, error)
	DeleteDocument(ctx context.Context, id int64) error

	ListFolders(ctx context.Context) ([]model.Folder, error)
	CreateFolder(ctx context.Context, req model.FolderRequest) (*model.Folder, error)
	RenameFolder(ctx context.Context, id int64, req model.FolderRequest) (*model.Folder, error)
	DeleteFolder(ctx context.Context, id int64) error

	UploadFile(ctx context.Context, f model.Upload, report ProgressFunc) (*model.UploadedFile, error)
	DownloadFile(ctx context.Context, id int64, w io.Writer, report ProgressFunc) (*model.Download, error)
	DeleteFile(ctx context.Context, id int64) error

	ListPosts(ctx context.Context, page, size int) (*model.PostPage, error)
	GetPost(ctx context.Context, id int64) (*model.Post, error)
	DeletePost(ctx context.Context, id int64) error

	ListComments(ctx context.Context, postID int64) ([]model.Comment, error)
	CreateComment(ctx context.Context, req model.CommentRequest) (*model.Comment, error)
	UpdateComment(ctx context.Context, id int64, req model.CommentRequest) (*model.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}
