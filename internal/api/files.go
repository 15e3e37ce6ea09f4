package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"dms-go/internal/dms"
	"dms-go/internal/model"
)

// UploadFile sends a single file to the standalone upload endpoint.
func (c *Client) UploadFile(ctx context.Context, f model.Upload, report dms.ProgressFunc) (*model.UploadedFile, error) {
	var out model.UploadedFile
	if err := c.sendMultipart(ctx, http.MethodPost, "/files/upload", nil, "file", []model.Upload{f}, report, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadFile streams file id into w. The returned name comes from the
// response's Content-Disposition header.
func (c *Client) DownloadFile(ctx context.Context, id int64, w io.Writer, report dms.ProgressFunc) (*model.Download, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/files/download/%d", id), accept: "*/*"})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	prog := newProgress(resp.ContentLength, report)
	n, err := io.Copy(w, prog.reader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("downloading file %d: %w", id, err)
	}
	prog.finish()

	return &model.Download{
		FileName:    attachmentName(resp.Header.Get("Content-Disposition"), fmt.Sprintf("file-%d", id)),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        n,
	}, nil
}

func (c *Client) DeleteFile(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/files/%d", id), nil, nil)
}

// attachmentName extracts a safe base file name from a Content-Disposition
// header, falling back when there is none.
func attachmentName(disposition, fallback string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	name := params["filename"]
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return fallback
	}
	return name
}
