package form

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"dms-go/internal/model"
)

const (
	MaxTitleLength   = 255
	MaxContentLength = 1000
	MaxFileSize      = 100 << 20

	MinUsernameLength = 4
	MinPasswordLength = 6
)

// Field names used in FieldError.
const (
	FieldTitle    = "title"
	FieldContent  = "content"
	FieldFiles    = "files"
	FieldName     = "name"
	FieldPostID   = "postId"
	FieldUsername = "username"
	FieldPassword = "password"
)

var documentExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
}

var documentMIMETypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

var postMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

func init() {
	for t := range documentMIMETypes {
		postMIMETypes[t] = true
	}
}

func checkTitle(title string) *FieldError {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return &FieldError{Field: FieldTitle, Message: "title is required"}
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return &FieldError{Field: FieldTitle, Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLength)}
	}
	return nil
}

func checkContent(content string, max int) *FieldError {
	content = strings.TrimSpace(content)
	switch {
	case content == "":
		return &FieldError{Field: FieldContent, Message: "content is required"}
	case max > 0 && utf8.RuneCountInString(content) > max:
		return &FieldError{Field: FieldContent, Message: fmt.Sprintf("content must be at most %d characters", max)}
	}
	return nil
}

func checkSize(u model.Upload) *FieldError {
	if u.Size > MaxFileSize {
		return &FieldError{
			Field:   FieldFiles,
			Message: fmt.Sprintf("%s: file must be at most 100MB (got %.2fMB)", u.Name, float64(u.Size)/(1<<20)),
		}
	}
	return nil
}

// CheckDocumentFile reports why u cannot be attached to a document, or nil.
// The extension and the MIME type must both be on the allow-list.
func CheckDocumentFile(u model.Upload) *FieldError {
	if fe := checkSize(u); fe != nil {
		return fe
	}
	if !documentExtensions[strings.ToLower(filepath.Ext(u.Name))] {
		return &FieldError{
			Field:   FieldFiles,
			Message: fmt.Sprintf("%s: only %s files are allowed", u.Name, strings.Join(sortedKeys(documentExtensions), ", ")),
		}
	}
	if !documentMIMETypes[normalizeMIME(u.ContentType)] {
		return &FieldError{
			Field:   FieldFiles,
			Message: fmt.Sprintf("%s: file type %q is not allowed", u.Name, u.ContentType),
		}
	}
	return nil
}

// CheckPostFile reports why u cannot be attached to a post, or nil.
func CheckPostFile(u model.Upload) *FieldError {
	if fe := checkSize(u); fe != nil {
		return fe
	}
	if !postMIMETypes[normalizeMIME(u.ContentType)] {
		return &FieldError{
			Field:   FieldFiles,
			Message: fmt.Sprintf("%s: file type %q is not allowed", u.Name, u.ContentType),
		}
	}
	return nil
}

// ValidateSignup checks the credentials a new account is created with.
func ValidateSignup(username, password string) error {
	var errs ValidationErrors
	if utf8.RuneCountInString(strings.TrimSpace(username)) < MinUsernameLength {
		errs = append(errs, FieldError{Field: FieldUsername, Message: fmt.Sprintf("username must be at least %d characters", MinUsernameLength)})
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		errs = append(errs, FieldError{Field: FieldPassword, Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)})
	}
	return errs.orNil()
}

func normalizeMIME(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
