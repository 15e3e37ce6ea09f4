package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"dms-go/internal/dms"
	"dms-go/internal/model"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// sendMultipart streams a multipart body built from an optional JSON
// "request" part and one part per file under field. Progress covers the
// file bytes only.
func (c *Client) sendMultipart(ctx context.Context, method, path string, reqBody any, field string,
	files []model.Upload, report dms.ProgressFunc, out any) error {

	var total int64
	for _, f := range files {
		total += f.Size
	}
	prog := newProgress(total, report)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeParts(mw, reqBody, field, files, prog))
	}()

	resp, err := c.do(ctx, request{method: method, path: path, body: pr, contentType: mw.FormDataContentType()})
	if err != nil {
		pr.CloseWithError(err)
		return err
	}
	defer resp.Body.Close()

	if err := decode(resp, out); err != nil {
		return err
	}
	prog.finish()
	return nil
}

func writeParts(mw *multipart.Writer, reqBody any, field string, files []model.Upload, prog *progress) error {
	if reqBody != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="request"`)
		h.Set("Content-Type", "application/json")
		part, err := mw.CreatePart(h)
		if err != nil {
			return fmt.Errorf("creating request part: %w", err)
		}
		if err := json.NewEncoder(part).Encode(reqBody); err != nil {
			return fmt.Errorf("encoding request part: %w", err)
		}
	}

	for _, f := range files {
		if err := writeFilePart(mw, field, f, prog); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writeFilePart(mw *multipart.Writer, field string, f model.Upload, prog *progress) error {
	if f.Open == nil {
		return fmt.Errorf("file %s has no content", f.Name)
	}
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating part for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	if _, err := io.Copy(part, prog.reader(rc)); err != nil {
		return fmt.Errorf("sending %s: %w", f.Name, err)
	}
	return nil
}

// sendPayload sends reqBody as plain JSON when there are no files and as
// multipart otherwise.
func (c *Client) sendPayload(ctx context.Context, method, path string, reqBody any, files []model.Upload, out any) error {
	if len(files) == 0 {
		return c.call(ctx, method, path, reqBody, out)
	}
	return c.sendMultipart(ctx, method, path, reqBody, "files", files, nil, out)
}
