package model

import (
	"io"
)

// User is the account the backend resolved from the bearer token.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// Document is a titled note with optional attachments, a folder and a star flag.
// Documents are only ever mutated by full replacement.
type Document struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	CreatedBy *User            `json:"createdBy,omitempty"`
	CreatedAt Timestamp        `json:"createdAt"`
	UpdatedAt Timestamp        `json:"updatedAt"`
	Files     []FileAttachment `json:"files"`
	FolderID  *int64           `json:"folderId"`
	IsStarred bool             `json:"isStarred"`
}

// FileIDs returns the ids of the document's attachments in order.
func (d *Document) FileIDs() []int64 {
	ids := make([]int64, 0, len(d.Files))
	for _, f := range d.Files {
		ids = append(ids, f.ID)
	}
	return ids
}

// FileAttachment is a file already stored on the server.
type FileAttachment struct {
	ID               int64  `json:"id"`
	OriginalFileName string `json:"originalFileName"`
	FileSize         int64  `json:"fileSize"`
}

// Folder groups documents.
type Folder struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	DocumentCount int64  `json:"documentCount"`
}

// Post is a board entry.
type Post struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	Content        string           `json:"content"`
	AuthorName     string           `json:"authorName"`
	CreatedAt      Timestamp        `json:"createdAt"`
	UpdatedAt      Timestamp        `json:"updatedAt"`
	ViewCount      int64            `json:"viewCount"`
	CommentCount   int64            `json:"commentCount"`
	Files          []FileAttachment `json:"files"`
	RecentComments []Comment        `json:"recentComments"`
}

// FileIDs returns the ids of the post's attachments in order.
func (p *Post) FileIDs() []int64 {
	ids := make([]int64, 0, len(p.Files))
	for _, f := range p.Files {
		ids = append(ids, f.ID)
	}
	return ids
}

// PostPage is one page of the board, in the backend's paging envelope.
type PostPage struct {
	Content       []Post `json:"content"`
	TotalPages    int    `json:"totalPages"`
	TotalElements int64  `json:"totalElements"`
	Number        int    `json:"number"`
	Size          int    `json:"size"`
	First         bool   `json:"first"`
	Last          bool   `json:"last"`
	Empty         bool   `json:"empty"`
}

// Comment belongs to a post.
type Comment struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	AuthorName string    `json:"authorName"`
	CreatedAt  Timestamp `json:"createdAt"`
	UpdatedAt  Timestamp `json:"updatedAt"`
	PostID     int64     `json:"postId"`
	UserID     int64     `json:"userId"`
}

// UploadedFile is the server's answer to a standalone upload.
type UploadedFile struct {
	ID       int64  `json:"id"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	FileType string `json:"fileType"`
}

// Download describes a file written by a download call.
type Download struct {
	FileName    string
	ContentType string
	Size        int64
}

// Upload is a file selected on the client that has not been sent yet.
// It has no id until the server stores it.
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// DocumentRequest is the JSON body of a document create or update.
type DocumentRequest struct {
	Title            string  `json:"title"`
	Content          string  `json:"content"`
	RemainingFileIDs []int64 `json:"remainingFileIds"`
	IsStarred        bool    `json:"isStarred"`
	FolderID         *int64  `json:"folderId"`
}

// DocumentPayload is a document request plus the new files to send with it.
type DocumentPayload struct {
	Request DocumentRequest
	Files   []Upload
}

// PostRequest is the JSON body of a post create or update.
type PostRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	FileIDs []int64 `json:"fileIds"`
}

// PostPayload is a post request plus the new files to send with it.
type PostPayload struct {
	Request PostRequest
	Files   []Upload
}

// CommentRequest is the JSON body of a comment create or update.
type CommentRequest struct {
	PostID  int64  `json:"postId"`
	Content string `json:"content"`
}

// Credentials is the body of login and signup.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// FolderRequest is the body of a folder create or rename.
type FolderRequest struct {
	Name string `json:"name"`
}
