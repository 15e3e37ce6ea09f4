package dms

import (
	"context"
	"fmt"
	"io"

	"dms-go/internal/form"
	"dms-go/internal/model"
)

// Service loads and mutates backend data. Every mutation that changes a
// list reloads that list from the server after the mutation succeeded;
// nothing is patched locally.
type Service struct {
	backend Backend
	logger  Logger
}

func NewService(backend Backend, logger Logger) *Service {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Service{backend: backend, logger: logger}
}

// Signup validates the credentials, checks the username is free and creates the account.
func (s *Service) Signup(ctx context.Context, username, password string) error {
	if err := form.ValidateSignup(username, password); err != nil {
		return err
	}
	taken, err := s.backend.UsernameTaken(ctx, username)
	if err != nil {
		return fmt.Errorf("checking username: %w", err)
	}
	if taken {
		return form.ValidationErrors{{Field: form.FieldUsername, Message: "username is already taken"}}
	}
	if err := s.backend.Signup(ctx, username, password); err != nil {
		return fmt.Errorf("signing up: %w", err)
	}
	s.logger.Info("account created", "username", username)
	return nil
}

// Documents loads one listing.
func (s *Service) Documents(ctx context.Context, l Listing) ([]model.Document, error) {
	var docs []model.Document
	var err error
	switch l.Kind {
	case ListAll:
		docs, err = s.backend.ListDocuments(ctx)
	case ListStarred:
		docs, err = s.backend.StarredDocuments(ctx)
	case ListRecent:
		docs, err = s.backend.RecentDocuments(ctx)
	case ListFolder:
		docs, err = s.backend.FolderDocuments(ctx, l.FolderID)
	default:
		return nil, fmt.Errorf("unknown listing %s", l)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s documents: %w", l, err)
	}
	return docs, nil
}

func (s *Service) Document(ctx context.Context, id int64) (*model.Document, error) {
	doc, err := s.backend.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading document %d: %w", id, err)
	}
	return doc, nil
}

// SaveDocument submits the form and then reloads listing l. When the save
// succeeds but the reload fails, the saved document is returned together
// with the error.
func (s *Service) SaveDocument(ctx context.Context, f *form.DocumentForm, l Listing) (*model.Document, []model.Document, error) {
	created := f.Mode() == form.ModeCreate
	saved, err := f.Submit(ctx, s.backend)
	if err != nil {
		return nil, nil, err
	}
	if created {
		s.logger.Info("document created", "id", saved.ID, "files", len(saved.Files))
	} else {
		s.logger.Info("document updated", "id", saved.ID, "files", len(saved.Files))
	}

	docs, err := s.Documents(ctx, l)
	if err != nil {
		return saved, nil, err
	}
	return saved, docs, nil
}

func (s *Service) DeleteDocument(ctx context.Context, id int64, l Listing) ([]model.Document, error) {
	if err := s.backend.DeleteDocument(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting document %d: %w", id, err)
	}
	s.logger.Info("document deleted", "id", id)
	return s.Documents(ctx, l)
}

func (s *Service) Folders(ctx context.Context) ([]model.Folder, error) {
	folders, err := s.backend.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading folders: %w", err)
	}
	return folders, nil
}

// SaveFolder creates or renames a folder, then reloads the folder list.
func (s *Service) SaveFolder(ctx context.Context, f *form.FolderForm) (*model.Folder, []model.Folder, error) {
	req, err := f.Request()
	if err != nil {
		return nil, nil, err
	}

	var folder *model.Folder
	if id := f.FolderID(); id != 0 {
		folder, err = s.backend.RenameFolder(ctx, id, req)
	} else {
		folder, err = s.backend.CreateFolder(ctx, req)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("saving folder: %w", err)
	}
	s.logger.Info("folder saved", "id", folder.ID, "name", folder.Name)

	folders, err := s.Folders(ctx)
	if err != nil {
		return folder, nil, err
	}
	return folder, folders, nil
}

func (s *Service) DeleteFolder(ctx context.Context, id int64) ([]model.Folder, error) {
	if err := s.backend.DeleteFolder(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting folder %d: %w", id, err)
	}
	s.logger.Info("folder deleted", "id", id)
	return s.Folders(ctx)
}

// UploadFile sends a standalone file after checking it locally.
func (s *Service) UploadFile(ctx context.Context, u model.Upload, report ProgressFunc) (*model.UploadedFile, error) {
	if fe := form.CheckPostFile(u); fe != nil {
		return nil, form.ValidationErrors{*fe}
	}
	out, err := s.backend.UploadFile(ctx, u, report)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", u.Name, err)
	}
	s.logger.Info("file uploaded", "id", out.ID, "name", out.FileName, "size", out.FileSize)
	return out, nil
}

func (s *Service) DownloadFile(ctx context.Context, id int64, w io.Writer, report ProgressFunc) (*model.Download, error) {
	d, err := s.backend.DownloadFile(ctx, id, w, report)
	if err != nil {
		return nil, fmt.Errorf("downloading file %d: %w", id, err)
	}
	s.logger.Debug("file downloaded", "id", id, "name", d.FileName, "size", d.Size)
	return d, nil
}

// DeleteFile deletes a stored file. When docID is non-zero the document the
// file belonged to is reloaded and returned.
func (s *Service) DeleteFile(ctx context.Context, id, docID int64) (*model.Document, error) {
	if err := s.backend.DeleteFile(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting file %d: %w", id, err)
	}
	s.logger.Info("file deleted", "id", id)
	if docID == 0 {
		return nil, nil
	}
	return s.Document(ctx, docID)
}

func (s *Service) Posts(ctx context.Context, page, size int) (*model.PostPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	p, err := s.backend.ListPosts(ctx, page, size)
	if err != nil {
		return nil, fmt.Errorf("loading posts: %w", err)
	}
	return p, nil
}

func (s *Service) Post(ctx context.Context, id int64) (*model.Post, error) {
	p, err := s.backend.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading post %d: %w", id, err)
	}
	return p, nil
}

func (s *Service) SavePost(ctx context.Context, f *form.PostForm) (*model.Post, error) {
	p, err := f.Submit(ctx, s.backend)
	if err != nil {
		return nil, err
	}
	s.logger.Info("post saved", "id", p.ID)
	return p, nil
}

// DeletePost deletes a post and reloads the first page of the board.
func (s *Service) DeletePost(ctx context.Context, id int64, size int) (*model.PostPage, error) {
	if err := s.backend.DeletePost(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting post %d: %w", id, err)
	}
	s.logger.Info("post deleted", "id", id)
	return s.Posts(ctx, 0, size)
}

func (s *Service) Comments(ctx context.Context, postID int64) ([]model.Comment, error) {
	comments, err := s.backend.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("loading comments of post %d: %w", postID, err)
	}
	return comments, nil
}

// SaveComment adds or edits a comment, then reloads the post's comments.
func (s *Service) SaveComment(ctx context.Context, f *form.CommentForm) ([]model.Comment, error) {
	req, err := f.Request()
	if err != nil {
		return nil, err
	}
	if id := f.CommentID(); id != 0 {
		_, err = s.backend.UpdateComment(ctx, id, req)
	} else {
		_, err = s.backend.CreateComment(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("saving comment: %w", err)
	}
	return s.Comments(ctx, req.PostID)
}

func (s *Service) DeleteComment(ctx context.Context, id, postID int64) ([]model.Comment, error) {
	if err := s.backend.DeleteComment(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting comment %d: %w", id, err)
	}
	return s.Comments(ctx, postID)
}
