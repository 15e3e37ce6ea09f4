package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dms-go/internal/api"
	"dms-go/internal/config"
	"dms-go/internal/dms"
	"dms-go/internal/form"
	"dms-go/internal/model"
	"dms-go/internal/telemetry"
	"dms-go/internal/tokenstore"
	"dms-go/internal/vault"
)

// Options are the per-run settings that do not live in the config file.
type Options struct {
	Verbose bool

	// Passphrase unlocks the age session store. Defaults to Passphrase.
	Passphrase func() (string, error)

	// Transport replaces the HTTP transport of the API client.
	Transport http.RoundTripper
}

// DMSApp is the application layer between the CLI and the dms Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw CLI values, and releases resources on Close.
type DMSApp struct {
	cfg      *config.Config
	tokens   dms.TokenStore
	client   *api.Client
	session  *dms.Session
	service  *dms.Service
	registry *prometheus.Registry
	shutdown telemetry.ShutdownFunc
	logger   dms.Logger
	op       *Operation
	logFile  *os.File
}

// NewDMSApp creates a fully wired DMSApp from the given config and restores
// the stored session. operation identifies the CLI command being run
// (e.g. "DocList", "Login"). The caller must call Close when done.
func NewDMSApp(ctx context.Context, cfg *config.Config, operation string, opts Options) (*DMSApp, error) {
	op := NewOperation(operation, time.Now())

	slogger, logFile, err := newLogger(cfg.LogDir, op.ID, cfg.LogLevel, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	a := &DMSApp{cfg: cfg, logger: logger, op: op, logFile: logFile}
	if err := a.wire(ctx, opts); err != nil {
		a.Fail(err)
		a.Close()
		return nil, err
	}
	logger.Debug("operation started", "name", op.Name, "server", a.client.BaseURL())
	return a, nil
}

func (a *DMSApp) wire(ctx context.Context, opts Options) error {
	passphrase := opts.Passphrase
	if passphrase == nil {
		passphrase = Passphrase
	}
	tokens, err := tokenstore.NewTokenStoreFromConfig(a.cfg.Session, a.cfg.ServerURL, passphrase)
	if err != nil {
		return fmt.Errorf("creating session store: %w", err)
	}
	a.tokens = tokens

	a.registry = prometheus.NewRegistry()
	metrics, err := api.NewMetrics(a.registry)
	if err != nil {
		return err
	}

	a.shutdown, err = telemetry.Init(ctx, a.cfg.Telemetry, a.logger)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	clientOpts := []api.Option{api.WithLogger(a.logger), api.WithMetrics(metrics)}
	if a.cfg.Telemetry.Tracing {
		clientOpts = append(clientOpts, api.WithTracing())
	}
	if opts.Transport != nil {
		clientOpts = append(clientOpts, api.WithTransport(opts.Transport))
	}
	a.client, err = api.New(api.ClientConfig{
		BaseURL:   a.cfg.ServerURL,
		Timeout:   time.Duration(a.cfg.HTTP.TimeoutSeconds) * time.Second,
		RateLimit: a.cfg.HTTP.RateLimit,
		Burst:     a.cfg.HTTP.Burst,
		UserAgent: a.cfg.HTTP.UserAgent,
	}, tokens, clientOpts...)
	if err != nil {
		return fmt.Errorf("creating api client: %w", err)
	}

	a.session = dms.NewSession(a.client, tokens, a.logger)
	a.client.OnUnauthorized(a.session.HandleUnauthorized)
	if err := a.session.Init(ctx); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	a.service = dms.NewService(a.client, a.logger)
	return nil
}

// Fail marks the operation as failed so Close logs it as such.
func (a *DMSApp) Fail(err error) {
	a.op.Fail()
	if err != nil {
		a.logger.Error("operation failed", "name", a.op.Name, "error", err)
	}
}

// Login authenticates and keeps the token for later runs.
func (a *DMSApp) Login(ctx context.Context, username, password string) (*model.User, error) {
	return a.session.Login(ctx, username, password)
}

func (a *DMSApp) Logout() error {
	return a.session.Logout()
}

func (a *DMSApp) Signup(ctx context.Context, username, password string) error {
	return a.service.Signup(ctx, username, password)
}

// WhoAmI returns the logged-in user and what the stored token says about itself.
func (a *DMSApp) WhoAmI() (*model.User, *dms.TokenClaims, error) {
	u, err := a.session.Require()
	if err != nil {
		return nil, nil, err
	}
	claims, err := a.session.Claims()
	if err != nil {
		return u, nil, err
	}
	return u, claims, nil
}

// Documents loads one listing. A non-zero folderID selects that folder and
// wins over the named view ("all", "starred" or "recent").
func (a *DMSApp) Documents(ctx context.Context, view string, folderID int64) ([]model.Document, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	l, err := listing(view, folderID)
	if err != nil {
		return nil, err
	}
	return a.service.Documents(ctx, l)
}

func listing(view string, folderID int64) (dms.Listing, error) {
	if folderID != 0 {
		return dms.FolderListing(folderID), nil
	}
	switch view {
	case "", "all":
		return dms.AllDocuments(), nil
	case "starred":
		return dms.StarredDocuments(), nil
	case "recent":
		return dms.RecentDocuments(), nil
	default:
		return dms.Listing{}, fmt.Errorf("unknown document view %q", view)
	}
}

func (a *DMSApp) Document(ctx context.Context, id int64) (*model.Document, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	return a.service.Document(ctx, id)
}

// DocumentChanges describes a document edit from the command line. Nil
// fields are left alone.
type DocumentChanges struct {
	Title       *string
	Content     *string
	Starred     *bool
	FolderID    *int64
	ClearFolder bool
	Attach      []string // local paths
	Detach      []int64  // attachment ids
}

func (c DocumentChanges) apply(f *form.DocumentForm) error {
	if c.Title != nil {
		if err := f.SetTitle(*c.Title); err != nil {
			return err
		}
	}
	if c.Content != nil {
		if err := f.SetContent(*c.Content); err != nil {
			return err
		}
	}
	if c.Starred != nil {
		if err := f.SetStarred(*c.Starred); err != nil {
			return err
		}
	}
	if c.ClearFolder {
		if err := f.SetFolder(nil); err != nil {
			return err
		}
	} else if c.FolderID != nil {
		if err := f.SetFolder(c.FolderID); err != nil {
			return err
		}
	}
	for _, id := range c.Detach {
		if err := f.Detach(id); err != nil {
			return err
		}
	}
	uploads, err := openUploads(c.Attach)
	if err != nil {
		return err
	}
	if len(uploads) > 0 {
		return f.Attach(uploads...)
	}
	return nil
}

func openUploads(paths []string) ([]model.Upload, error) {
	uploads := make([]model.Upload, 0, len(paths))
	for _, p := range paths {
		u, err := form.FileFromPath(p)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

// keepSaved reports a successful save even when refreshing the listing
// afterwards failed. The refresh error is logged.
func keepSaved[T any](logger dms.Logger, saved *T, err error) (*T, error) {
	if saved == nil {
		return nil, err
	}
	if err != nil {
		logger.Warn("reloading after save", "error", err)
	}
	return saved, nil
}

// CreateDocument creates a document and returns it.
func (a *DMSApp) CreateDocument(ctx context.Context, c DocumentChanges) (*model.Document, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	f := form.NewDocumentForm()
	if err := c.apply(f); err != nil {
		return nil, err
	}
	doc, _, err := a.service.SaveDocument(ctx, f, dms.AllDocuments())
	return keepSaved(a.logger, doc, err)
}

// EditDocument loads document id, applies c and saves it.
func (a *DMSApp) EditDocument(ctx context.Context, id int64, c DocumentChanges) (*model.Document, error) {
	doc, err := a.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	f := form.OpenDocument(doc)
	if err := f.Edit(); err != nil {
		return nil, err
	}
	if err := c.apply(f); err != nil {
		return nil, err
	}
	saved, _, err := a.service.SaveDocument(ctx, f, dms.AllDocuments())
	return keepSaved(a.logger, saved, err)
}

func (a *DMSApp) DeleteDocument(ctx context.Context, id int64) error {
	if _, err := a.session.Require(); err != nil {
		return err
	}
	_, err := a.service.DeleteDocument(ctx, id, dms.AllDocuments())
	return err
}

// ExportDocument copies the attachments of document id into the named vault.
func (a *DMSApp) ExportDocument(ctx context.Context, id int64, vaultName string) (*dms.ExportResult, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	vc, err := a.cfg.Vault(vaultName)
	if err != nil {
		return nil, err
	}
	v, err := vault.NewVaultFromConfig(ctx, vc)
	if err != nil {
		return nil, fmt.Errorf("creating vault %s: %w", vc.Name, err)
	}
	if err := v.ValidateSetup(ctx); err != nil {
		return nil, fmt.Errorf("vault %s: %w", vc.Name, err)
	}
	return a.service.ExportAttachments(ctx, id, v)
}

func (a *DMSApp) Folders(ctx context.Context) ([]model.Folder, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	return a.service.Folders(ctx)
}

func (a *DMSApp) CreateFolder(ctx context.Context, name string) (*model.Folder, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	f := form.NewFolderForm()
	f.SetName(name)
	folder, _, err := a.service.SaveFolder(ctx, f)
	return keepSaved(a.logger, folder, err)
}

// RenameFolder renames folder id. An unchanged name returns form.ErrUnchanged.
func (a *DMSApp) RenameFolder(ctx context.Context, id int64, name string) (*model.Folder, error) {
	folders, err := a.Folders(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range folders {
		if existing.ID != id {
			continue
		}
		f := form.RenameFolderForm(existing)
		f.SetName(name)
		folder, _, err := a.service.SaveFolder(ctx, f)
		return keepSaved(a.logger, folder, err)
	}
	return nil, fmt.Errorf("folder %d: %w", id, dms.ErrNotFound)
}

func (a *DMSApp) DeleteFolder(ctx context.Context, id int64) error {
	if _, err := a.session.Require(); err != nil {
		return err
	}
	_, err := a.service.DeleteFolder(ctx, id)
	return err
}

// UploadFile sends the file at path as a standalone upload.
func (a *DMSApp) UploadFile(ctx context.Context, path string, report dms.ProgressFunc) (*model.UploadedFile, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	u, err := form.FileFromPath(path)
	if err != nil {
		return nil, err
	}
	return a.service.UploadFile(ctx, u, report)
}

// DownloadFile saves file id to outPath. When outPath is a directory the
// file keeps the name the server reports. A failed download leaves nothing
// behind.
func (a *DMSApp) DownloadFile(ctx context.Context, id int64, outPath string, report dms.ProgressFunc) (string, error) {
	if _, err := a.session.Require(); err != nil {
		return "", err
	}

	dir, target := outPath, ""
	if info, err := os.Stat(outPath); err != nil || !info.IsDir() {
		dir, target = filepath.Dir(outPath), outPath
	}
	tmp, err := os.CreateTemp(dir, ".dms-download-*")
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	tmpPath := tmp.Name()

	d, err := a.service.DownloadFile(ctx, id, tmp, report)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing download file: %w", cerr)
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	if target == "" {
		target = filepath.Join(dir, filepath.Base(d.FileName))
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("saving download: %w", err)
	}
	return target, nil
}

// DeleteFile deletes a stored file. docID, when non-zero, is the document
// it was attached to and is reloaded.
func (a *DMSApp) DeleteFile(ctx context.Context, id, docID int64) (*model.Document, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	return a.service.DeleteFile(ctx, id, docID)
}

func (a *DMSApp) Posts(ctx context.Context, page, size int) (*model.PostPage, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	return a.service.Posts(ctx, page, size)
}

// Post loads a post together with its comments.
func (a *DMSApp) Post(ctx context.Context, id int64) (*model.Post, []model.Comment, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, nil, err
	}
	p, err := a.service.Post(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	comments, err := a.service.Comments(ctx, id)
	if err != nil {
		return p, nil, err
	}
	return p, comments, nil
}

// PostChanges describes a post edit; nil fields are left alone.
type PostChanges struct {
	Title   *string
	Content *string
	Attach  []string
	Detach  []int64
}

func (c PostChanges) apply(f *form.PostForm) error {
	if c.Title != nil {
		if err := f.SetTitle(*c.Title); err != nil {
			return err
		}
	}
	if c.Content != nil {
		if err := f.SetContent(*c.Content); err != nil {
			return err
		}
	}
	for _, id := range c.Detach {
		if err := f.Detach(id); err != nil {
			return err
		}
	}
	uploads, err := openUploads(c.Attach)
	if err != nil {
		return err
	}
	if len(uploads) > 0 {
		return f.Attach(uploads...)
	}
	return nil
}

func (a *DMSApp) CreatePost(ctx context.Context, c PostChanges) (*model.Post, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	f := form.NewPostForm()
	if err := c.apply(f); err != nil {
		return nil, err
	}
	return a.service.SavePost(ctx, f)
}

func (a *DMSApp) EditPost(ctx context.Context, id int64, c PostChanges) (*model.Post, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	p, err := a.service.Post(ctx, id)
	if err != nil {
		return nil, err
	}
	f := form.EditPost(p)
	if err := c.apply(f); err != nil {
		return nil, err
	}
	return a.service.SavePost(ctx, f)
}

func (a *DMSApp) DeletePost(ctx context.Context, id int64) error {
	if _, err := a.session.Require(); err != nil {
		return err
	}
	_, err := a.service.DeletePost(ctx, id, 0)
	return err
}

func (a *DMSApp) Comments(ctx context.Context, postID int64) ([]model.Comment, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	return a.service.Comments(ctx, postID)
}

func (a *DMSApp) AddComment(ctx context.Context, postID int64, content string) ([]model.Comment, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	f := form.NewCommentForm(postID)
	f.SetContent(content)
	return a.service.SaveComment(ctx, f)
}

// EditComment replaces the text of comment id on post postID.
func (a *DMSApp) EditComment(ctx context.Context, postID, id int64, content string) ([]model.Comment, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	comments, err := a.service.Comments(ctx, postID)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if c.ID != id {
			continue
		}
		f := form.EditCommentForm(c)
		f.SetContent(content)
		return a.service.SaveComment(ctx, f)
	}
	return nil, fmt.Errorf("comment %d on post %d: %w", id, postID, dms.ErrNotFound)
}

func (a *DMSApp) DeleteComment(ctx context.Context, postID, id int64) ([]model.Comment, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	return a.service.DeleteComment(ctx, id, postID)
}

// Close logs the operation outcome, flushes telemetry and releases the
// session store and log file.
func (a *DMSApp) Close() error {
	var errs []error

	a.logger.Info("operation finished",
		"name", a.op.Name,
		"status", a.op.Status,
		"duration", time.Since(a.op.StartedAt).Round(time.Millisecond))

	if path := a.cfg.Telemetry.MetricsTextfile; path != "" && a.registry != nil {
		if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics: %w", err))
		}
	}

	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down tracing: %w", err))
		}
		cancel()
	}

	if c, ok := a.tokens.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing session store: %w", err))
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return errors.Join(errs...)
}
