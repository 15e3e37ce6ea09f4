package form

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"dms-go/internal/model"
)

// FileFromPath describes a local file as an upload. The MIME type is
// detected from the file's content, not its name.
func FileFromPath(path string) (model.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Upload{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return model.Upload{}, fmt.Errorf("%s is a directory", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return model.Upload{}, fmt.Errorf("detecting type of %s: %w", path, err)
	}

	return model.Upload{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: narrowType(mt, path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FileFromBytes describes in-memory data as an upload. An empty
// contentType is detected from data.
func FileFromBytes(name, contentType string, data []byte) model.Upload {
	if contentType == "" {
		contentType = narrowType(mimetype.Detect(data), name)
	}
	return model.Upload{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Office files are containers. Detection reads only the head of the file
// and can stop at the container type when the part that identifies the
// format lies further in.
var officeTypes = map[string]string{
	".doc":  "application/msword",
	".xls":  "application/vnd.ms-excel",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// narrowType returns the detected type of the file called name. A bare
// container is narrowed to the office type its extension names, provided
// that type is stored in that container.
func narrowType(mt *mimetype.MIME, name string) string {
	want, ok := officeTypes[strings.ToLower(filepath.Ext(name))]
	if !ok || mt.Is(want) {
		return mt.String()
	}
	known := mimetype.Lookup(want)
	if known == nil {
		return mt.String()
	}
	// The root type (octet-stream) says nothing about the content.
	for p := known.Parent(); p != nil && p.Parent() != nil; p = p.Parent() {
		if mt.Is(p.String()) {
			return want
		}
	}
	return mt.String()
}
