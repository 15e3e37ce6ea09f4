package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/golang-jwt/jwt/v5"

	"dms-go/internal/model"
)

// RecordedFile is one file part of a recorded multipart request.
type RecordedFile struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// RecordedRequest is what the fake backend saw of one request.
type RecordedRequest struct {
	Method        string
	Path          string // without the /api prefix
	Query         string
	ContentType   string
	Accept        string
	Authorization string
	RequestID     string
	UserAgent     string
	JSON          []byte // JSON body, or the "request" part of a multipart body
	Files         []RecordedFile
}

// Multipart reports whether the request body was multipart/form-data.
func (r RecordedRequest) Multipart() bool {
	return strings.HasPrefix(r.ContentType, fiber.MIMEMultipartForm)
}

type fakeUser struct {
	model.User
	password string
}

type storedFile struct {
	name        string
	contentType string
	data        []byte
}

type failure struct {
	method  string // empty matches any request
	path    string
	status  int
	message string
}

// FakeBackend is an in-process stand-in for the document-management REST
// API. It keeps everything in memory and records every request.
type FakeBackend struct {
	srv    *httptest.Server
	secret []byte

	mu        sync.Mutex
	nextID    int64
	tokenSeq  int
	users     map[string]*fakeUser
	tokens    map[string]string
	documents map[int64]*model.Document
	folders   map[int64]*model.Folder
	files     map[int64]*storedFile
	posts     map[int64]*model.Post
	comments  map[int64]*model.Comment
	requests  []RecordedRequest
	failures  []failure

	stringFolderIDs bool
}

// NewFakeBackend starts a fake backend that is shut down when the test completes.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		secret:    []byte("fake-backend-secret"),
		users:     make(map[string]*fakeUser),
		tokens:    make(map[string]string),
		documents: make(map[int64]*model.Document),
		folders:   make(map[int64]*model.Folder),
		files:     make(map[int64]*storedFile),
		posts:     make(map[int64]*model.Post),
		comments:  make(map[int64]*model.Comment),
	}

	app := fiber.New(fiber.Config{
		Immutable:             true,
		DisableStartupMessage: true,
		BodyLimit:             200 << 20,
	})
	b.registerRoutes(app)

	b.srv = httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(b.srv.Close)
	return b
}

// URL is the API base URL, ending in /api.
func (b *FakeBackend) URL() string {
	return b.srv.URL + "/api"
}

// AddUser registers an account.
func (b *FakeBackend) AddUser(username, password string) model.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(username, password)
}

func (b *FakeBackend) addUserLocked(username, password string) model.User {
	u := &fakeUser{User: model.User{ID: b.id(), Username: username, Role: "USER"}, password: password}
	b.users[username] = u
	return u.User
}

// IssueToken mints a valid token for username without a login request.
func (b *FakeBackend) IssueToken(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(username)
}

func (b *FakeBackend) issueLocked(username string) string {
	b.tokenSeq++
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        strconv.Itoa(b.tokenSeq),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(fmt.Sprintf("signing token: %v", err))
	}
	b.tokens[signed] = username
	return signed
}

// ExpireTokens invalidates every token issued so far.
func (b *FakeBackend) ExpireTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]string)
}

// FailNext makes the next API request fail with status and a JSON message.
// Calls queue up.
func (b *FakeBackend) FailNext(status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, failure{status: status, message: message})
}

// FailNextRequestTo makes the next request to method and path (without the
// /api prefix) fail. Other requests pass through.
func (b *FakeBackend) FailNextRequestTo(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, failure{method: method, path: path, status: status, message: message})
}

// SendFolderIDsAsStrings makes document responses carry folderId as a
// JSON string, the way the backend's DocumentResponse serializes it.
func (b *FakeBackend) SendFolderIDsAsStrings() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stringFolderIDs = true
}

// AddFile stores a file and returns its attachment record.
func (b *FakeBackend) AddFile(name, contentType string, data []byte) model.FileAttachment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.storeLocked(name, contentType, data)
}

func (b *FakeBackend) storeLocked(name, contentType string, data []byte) model.FileAttachment {
	id := b.id()
	b.files[id] = &storedFile{name: name, contentType: contentType, data: data}
	return model.FileAttachment{ID: id, OriginalFileName: name, FileSize: int64(len(data))}
}

// AddDocument stores doc under a fresh id.
func (b *FakeBackend) AddDocument(doc model.Document) model.Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc.ID = b.id()
	now := model.Timestamp{Time: time.Now()}
	doc.CreatedAt, doc.UpdatedAt = now, now
	if doc.Files == nil {
		doc.Files = []model.FileAttachment{}
	}
	b.documents[doc.ID] = &doc
	return doc
}

// AddFolder creates a folder.
func (b *FakeBackend) AddFolder(name string) model.Folder {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := &model.Folder{ID: b.id(), Name: name}
	b.folders[f.ID] = f
	return *f
}

// AddPost stores p under a fresh id.
func (b *FakeBackend) AddPost(p model.Post) model.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	p.ID = b.id()
	now := model.Timestamp{Time: time.Now()}
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Files == nil {
		p.Files = []model.FileAttachment{}
	}
	b.posts[p.ID] = &p
	return p
}

// Document returns the stored document.
func (b *FakeBackend) Document(id int64) (model.Document, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.documents[id]
	if !ok {
		return model.Document{}, false
	}
	return *d, true
}

// FileData returns the content of a stored file.
func (b *FakeBackend) FileData(id int64) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.files[id]
	if !ok {
		return nil, false
	}
	return f.data, true
}

// Requests returns every request seen so far.
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// RequestsTo returns the requests with the given method and path.
func (b *FakeBackend) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// LastRequest returns the most recent request.
func (b *FakeBackend) LastRequest() RecordedRequest {
	reqs := b.Requests()
	if len(reqs) == 0 {
		return RecordedRequest{}
	}
	return reqs[len(reqs)-1]
}

// id must be called with mu held.
func (b *FakeBackend) id() int64 {
	b.nextID++
	return b.nextID
}

func (b *FakeBackend) registerRoutes(app *fiber.App) {
	api := app.Group("/api", b.record, b.injectFailure)

	api.Post("/auth/login", b.login)
	api.Post("/auth/signup", b.signup)
	api.Get("/auth/check-username/:username", b.checkUsername)
	api.Get("/auth/me", b.auth, b.me)

	api.Get("/documents", b.auth, b.listDocuments(func(*model.Document) bool { return true }))
	api.Get("/documents/starred", b.auth, b.listDocuments(func(d *model.Document) bool { return d.IsStarred }))
	api.Get("/documents/recent", b.auth, b.recentDocuments)
	api.Get("/documents/folder/:id", b.auth, b.folderDocuments)
	api.Get("/documents/:id", b.auth, b.getDocument)
	api.Post("/documents", b.auth, b.saveDocument)
	api.Put("/documents/:id", b.auth, b.saveDocument)
	api.Delete("/documents/:id", b.auth, b.deleteDocument)

	api.Get("/folders", b.auth, b.listFolders)
	api.Post("/folders", b.auth, b.saveFolder)
	api.Put("/folders/:id", b.auth, b.saveFolder)
	api.Delete("/folders/:id", b.auth, b.deleteFolder)

	api.Post("/files/upload", b.auth, b.uploadFile)
	api.Get("/files/download/:id", b.auth, b.downloadFile)
	api.Delete("/files/:id", b.auth, b.deleteFile)

	api.Get("/posts", b.auth, b.listPosts)
	api.Get("/posts/:id", b.auth, b.getPost)
	api.Post("/posts", b.auth, b.savePost)
	api.Put("/posts/:id", b.auth, b.savePost)
	api.Delete("/posts/:id", b.auth, b.deletePost)

	api.Get("/comments/:postId", b.auth, b.listComments)
	api.Post("/comments", b.auth, b.saveComment)
	api.Put("/comments/:id", b.auth, b.saveComment)
	api.Delete("/comments/:id", b.auth, b.deleteComment)
}

func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

func (b *FakeBackend) record(c *fiber.Ctx) error {
	r := RecordedRequest{
		Method:        c.Method(),
		Path:          strings.TrimPrefix(c.Path(), "/api"),
		Query:         string(c.Request().URI().QueryString()),
		ContentType:   c.Get(fiber.HeaderContentType),
		Accept:        c.Get(fiber.HeaderAccept),
		Authorization: c.Get(fiber.HeaderAuthorization),
		RequestID:     c.Get(fiber.HeaderXRequestID),
		UserAgent:     c.Get(fiber.HeaderUserAgent),
	}

	if r.Multipart() {
		mf, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "malformed multipart body")
		}
		if vals := mf.Value["request"]; len(vals) > 0 {
			r.JSON = []byte(vals[0])
		}
		fields := make([]string, 0, len(mf.File))
		for field := range mf.File {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			for _, fh := range mf.File[field] {
				f, err := fh.Open()
				if err != nil {
					return writeError(c, fiber.StatusBadRequest, "unreadable file part")
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					return writeError(c, fiber.StatusBadRequest, "unreadable file part")
				}
				r.Files = append(r.Files, RecordedFile{
					Field:       field,
					Name:        fh.Filename,
					ContentType: fh.Header.Get(fiber.HeaderContentType),
					Data:        data,
				})
			}
		}
	} else if body := c.Body(); len(body) > 0 {
		r.JSON = append([]byte(nil), body...)
	}

	b.mu.Lock()
	b.requests = append(b.requests, r)
	b.mu.Unlock()

	c.Locals("recorded", r)
	return c.Next()
}

func (b *FakeBackend) injectFailure(c *fiber.Ctx) error {
	path := strings.TrimPrefix(c.Path(), "/api")
	b.mu.Lock()
	for i, f := range b.failures {
		if f.method != "" && (f.method != c.Method() || f.path != path) {
			continue
		}
		b.failures = append(b.failures[:i], b.failures[i+1:]...)
		b.mu.Unlock()
		return writeError(c, f.status, f.message)
	}
	b.mu.Unlock()
	return c.Next()
}

func (b *FakeBackend) auth(c *fiber.Ctx) error {
	raw, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok || raw == "" {
		return writeError(c, fiber.StatusUnauthorized, "missing token")
	}

	_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return writeError(c, fiber.StatusUnauthorized, "invalid token")
	}

	b.mu.Lock()
	username, ok := b.tokens[raw]
	u := b.users[username]
	b.mu.Unlock()
	if !ok || u == nil {
		return writeError(c, fiber.StatusUnauthorized, "token expired")
	}

	c.Locals("user", u.User)
	return c.Next()
}

func currentUser(c *fiber.Ctx) model.User {
	u, _ := c.Locals("user").(model.User)
	return u
}

func requestJSON(c *fiber.Ctx, v any) error {
	r, _ := c.Locals("recorded").(RecordedRequest)
	if len(r.JSON) == 0 {
		return fmt.Errorf("empty request body")
	}
	return json.Unmarshal(r.JSON, v)
}

func recordedFiles(c *fiber.Ctx, field string) []RecordedFile {
	r, _ := c.Locals("recorded").(RecordedRequest)
	var out []RecordedFile
	for _, f := range r.Files {
		if f.Field == field {
			out = append(out, f)
		}
	}
	return out
}

func (b *FakeBackend) login(c *fiber.Ctx) error {
	var creds model.Credentials
	if err := requestJSON(c, &creds); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid body")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[creds.Username]
	if !ok || u.password != creds.Password {
		return writeError(c, fiber.StatusUnauthorized, "bad credentials")
	}
	return c.JSON(fiber.Map{"token": b.issueLocked(creds.Username)})
}

func (b *FakeBackend) signup(c *fiber.Ctx) error {
	var creds model.Credentials
	if err := requestJSON(c, &creds); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid body")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[creds.Username]; exists {
		return writeError(c, fiber.StatusConflict, "username already exists")
	}
	b.addUserLocked(creds.Username, creds.Password)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "user registered"})
}

func (b *FakeBackend) checkUsername(c *fiber.Ctx) error {
	b.mu.Lock()
	_, taken := b.users[c.Params("username")]
	b.mu.Unlock()
	return c.JSON(taken)
}

func (b *FakeBackend) me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// visible reports whether d belongs to u. Seeded documents without an
// owner are visible to everyone.
func visible(d *model.Document, u model.User) bool {
	return d.CreatedBy == nil || d.CreatedBy.Username == u.Username
}

func (b *FakeBackend) collect(u model.User, keep func(*model.Document) bool) []model.Document {
	out := []model.Document{}
	for _, d := range b.documents {
		if visible(d, u) && keep(d) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type stringFolderDocument struct {
	model.Document
	FolderID *string `json:"folderId"`
}

// wireDocuments encodes documents the way the current mode sends them.
// Callers hold b.mu.
func (b *FakeBackend) wireDocuments(docs ...model.Document) []any {
	out := make([]any, 0, len(docs))
	for _, d := range docs {
		if !b.stringFolderIDs {
			out = append(out, d)
			continue
		}
		w := stringFolderDocument{Document: d}
		if d.FolderID != nil {
			s := strconv.FormatInt(*d.FolderID, 10)
			w.FolderID = &s
		}
		out = append(out, w)
	}
	return out
}

func (b *FakeBackend) listDocuments(keep func(*model.Document) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		return c.JSON(b.wireDocuments(b.collect(currentUser(c), keep)...))
	}
}

func (b *FakeBackend) recentDocuments(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	docs := b.collect(currentUser(c), func(*model.Document) bool { return true })
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].ID > docs[j].ID })
	if len(docs) > 10 {
		docs = docs[:10]
	}
	return c.JSON(b.wireDocuments(docs...))
}

func (b *FakeBackend) folderDocuments(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid folder id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.folders[int64(id)]; !ok {
		return writeError(c, fiber.StatusNotFound, "folder not found")
	}
	return c.JSON(b.wireDocuments(b.collect(currentUser(c), func(d *model.Document) bool {
		return d.FolderID != nil && *d.FolderID == int64(id)
	})...))
}

func (b *FakeBackend) getDocument(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid document id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.documents[int64(id)]
	if !ok || !visible(d, currentUser(c)) {
		return writeError(c, fiber.StatusNotFound, "document not found")
	}
	return c.JSON(b.wireDocuments(*d)[0])
}

// keepFiles returns the attachments of current whose ids are listed in ids.
// Files dropped from the list are deleted.
func (b *FakeBackend) keepFiles(current []model.FileAttachment, ids []int64) []model.FileAttachment {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []model.FileAttachment{}
	for _, f := range current {
		if want[f.ID] {
			out = append(out, f)
		} else {
			delete(b.files, f.ID)
		}
	}
	return out
}

func (b *FakeBackend) saveDocument(c *fiber.Ctx) error {
	var req model.DocumentRequest
	if err := requestJSON(c, &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return writeError(c, fiber.StatusBadRequest, "title is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if req.FolderID != nil {
		if _, ok := b.folders[*req.FolderID]; !ok {
			return writeError(c, fiber.StatusBadRequest, "folder not found")
		}
	}

	u := currentUser(c)
	now := model.Timestamp{Time: time.Now()}
	var doc *model.Document
	if c.Method() == fiber.MethodPut {
		id, err := c.ParamsInt("id")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid document id")
		}
		existing, ok := b.documents[int64(id)]
		if !ok || !visible(existing, u) {
			return writeError(c, fiber.StatusNotFound, "document not found")
		}
		doc = existing
		doc.Files = b.keepFiles(doc.Files, req.RemainingFileIDs)
	} else {
		owner := u
		doc = &model.Document{ID: b.id(), CreatedBy: &owner, CreatedAt: now, Files: []model.FileAttachment{}}
		b.documents[doc.ID] = doc
	}

	doc.Title = req.Title
	doc.Content = req.Content
	doc.IsStarred = req.IsStarred
	doc.FolderID = req.FolderID
	doc.UpdatedAt = now
	for _, f := range recordedFiles(c, "files") {
		doc.Files = append(doc.Files, b.storeLocked(f.Name, f.ContentType, f.Data))
	}

	status := fiber.StatusOK
	if c.Method() == fiber.MethodPost {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(b.wireDocuments(*doc)[0])
}

func (b *FakeBackend) deleteDocument(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid document id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.documents[int64(id)]
	if !ok || !visible(d, currentUser(c)) {
		return writeError(c, fiber.StatusNotFound, "document not found")
	}
	b.keepFiles(d.Files, nil)
	delete(b.documents, int64(id))
	return c.SendStatus(fiber.StatusNoContent)
}

func (b *FakeBackend) listFolders(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.Folder{}
	for _, f := range b.folders {
		folder := *f
		for _, d := range b.documents {
			if d.FolderID != nil && *d.FolderID == f.ID {
				folder.DocumentCount++
			}
		}
		out = append(out, folder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return c.JSON(out)
}

func (b *FakeBackend) saveFolder(c *fiber.Ctx) error {
	var req model.FolderRequest
	if err := requestJSON(c, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		return writeError(c, fiber.StatusBadRequest, "name is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if c.Method() == fiber.MethodPost {
		f := &model.Folder{ID: b.id(), Name: req.Name}
		b.folders[f.ID] = f
		return c.Status(fiber.StatusCreated).JSON(f)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid folder id")
	}
	f, ok := b.folders[int64(id)]
	if !ok {
		return writeError(c, fiber.StatusNotFound, "folder not found")
	}
	f.Name = req.Name
	return c.JSON(f)
}

func (b *FakeBackend) deleteFolder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid folder id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.folders[int64(id)]; !ok {
		return writeError(c, fiber.StatusNotFound, "folder not found")
	}
	delete(b.folders, int64(id))
	for _, d := range b.documents {
		if d.FolderID != nil && *d.FolderID == int64(id) {
			d.FolderID = nil
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (b *FakeBackend) uploadFile(c *fiber.Ctx) error {
	files := recordedFiles(c, "file")
	if len(files) != 1 {
		return writeError(c, fiber.StatusBadRequest, "exactly one file expected")
	}
	f := files[0]

	b.mu.Lock()
	att := b.storeLocked(f.Name, f.ContentType, f.Data)
	b.mu.Unlock()

	return c.JSON(model.UploadedFile{
		ID:       att.ID,
		FileName: att.OriginalFileName,
		FileSize: att.FileSize,
		FileType: f.ContentType,
	})
}

func (b *FakeBackend) downloadFile(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid file id")
	}
	b.mu.Lock()
	f, ok := b.files[int64(id)]
	b.mu.Unlock()
	if !ok {
		return writeError(c, fiber.StatusNotFound, "file not found")
	}

	ct := f.contentType
	if ct == "" {
		ct = fiber.MIMEOctetStream
	}
	c.Set(fiber.HeaderContentType, ct)
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": f.name}))
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(f.data)))
	return c.Send(f.data)
}

func (b *FakeBackend) deleteFile(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid file id")
	}
	fid := int64(id)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.files[fid]; !ok {
		return writeError(c, fiber.StatusNotFound, "file not found")
	}
	delete(b.files, fid)
	for _, d := range b.documents {
		d.Files = without(d.Files, fid)
	}
	for _, p := range b.posts {
		p.Files = without(p.Files, fid)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func without(files []model.FileAttachment, id int64) []model.FileAttachment {
	out := []model.FileAttachment{}
	for _, f := range files {
		if f.ID != id {
			out = append(out, f)
		}
	}
	return out
}

func (b *FakeBackend) listPosts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 10)
	if size <= 0 {
		size = 10
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	all := make([]model.Post, 0, len(b.posts))
	for _, p := range b.posts {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	start := page * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	totalPages := (len(all) + size - 1) / size

	return c.JSON(model.PostPage{
		Content:       all[start:end],
		TotalPages:    totalPages,
		TotalElements: int64(len(all)),
		Number:        page,
		Size:          size,
		First:         page == 0,
		Last:          page >= totalPages-1,
		Empty:         end == start,
	})
}

func (b *FakeBackend) getPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid post id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.posts[int64(id)]
	if !ok {
		return writeError(c, fiber.StatusNotFound, "post not found")
	}
	p.ViewCount++
	return c.JSON(p)
}

func (b *FakeBackend) savePost(c *fiber.Ctx) error {
	var req model.PostRequest
	if err := requestJSON(c, &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid body")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := model.Timestamp{Time: time.Now()}
	var p *model.Post
	if c.Method() == fiber.MethodPut {
		id, err := c.ParamsInt("id")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid post id")
		}
		existing, ok := b.posts[int64(id)]
		if !ok {
			return writeError(c, fiber.StatusNotFound, "post not found")
		}
		p = existing
		p.Files = b.keepFiles(p.Files, req.FileIDs)
	} else {
		p = &model.Post{ID: b.id(), AuthorName: currentUser(c).Username, CreatedAt: now, Files: []model.FileAttachment{}}
		b.posts[p.ID] = p
	}

	p.Title = req.Title
	p.Content = req.Content
	p.UpdatedAt = now
	for _, f := range recordedFiles(c, "files") {
		p.Files = append(p.Files, b.storeLocked(f.Name, f.ContentType, f.Data))
	}
	return c.JSON(p)
}

func (b *FakeBackend) deletePost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid post id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.posts[int64(id)]
	if !ok {
		return writeError(c, fiber.StatusNotFound, "post not found")
	}
	b.keepFiles(p.Files, nil)
	delete(b.posts, int64(id))
	for cid, cm := range b.comments {
		if cm.PostID == int64(id) {
			delete(b.comments, cid)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (b *FakeBackend) listComments(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid post id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.Comment{}
	for _, cm := range b.comments {
		if cm.PostID == int64(postID) {
			out = append(out, *cm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return c.JSON(out)
}

func (b *FakeBackend) saveComment(c *fiber.Ctx) error {
	var req model.CommentRequest
	if err := requestJSON(c, &req); err != nil || strings.TrimSpace(req.Content) == "" {
		return writeError(c, fiber.StatusBadRequest, "content is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.posts[req.PostID]
	if !ok {
		return writeError(c, fiber.StatusNotFound, "post not found")
	}

	u := currentUser(c)
	now := model.Timestamp{Time: time.Now()}
	if c.Method() == fiber.MethodPost {
		cm := &model.Comment{
			ID:         b.id(),
			Content:    req.Content,
			AuthorName: u.Username,
			CreatedAt:  now,
			UpdatedAt:  now,
			PostID:     req.PostID,
			UserID:     u.ID,
		}
		b.comments[cm.ID] = cm
		p.CommentCount++
		return c.Status(fiber.StatusCreated).JSON(cm)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid comment id")
	}
	cm, ok := b.comments[int64(id)]
	if !ok {
		return writeError(c, fiber.StatusNotFound, "comment not found")
	}
	cm.Content = req.Content
	cm.UpdatedAt = now
	return c.JSON(cm)
}

func (b *FakeBackend) deleteComment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid comment id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	cm, ok := b.comments[int64(id)]
	if !ok {
		return writeError(c, fiber.StatusNotFound, "comment not found")
	}
	delete(b.comments, int64(id))
	if p, ok := b.posts[cm.PostID]; ok && p.CommentCount > 0 {
		p.CommentCount--
	}
	return c.SendStatus(fiber.StatusNoContent)
}
