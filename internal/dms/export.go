package dms

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"dms-go/internal/model"
)

// ExportResult summarises an attachment export.
type ExportResult struct {
	Exported []string
	Skipped  []string
}

// ExportKey is the vault key an attachment is exported under. Stored files
// never change, so an existing key is not written again.
func ExportKey(docID int64, f model.FileAttachment) string {
	return fmt.Sprintf("documents/%d/%d-%s", docID, f.ID, sanitizeName(f.OriginalFileName))
}

func sanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

// ExportAttachments streams every attachment of document docID into v.
func (s *Service) ExportAttachments(ctx context.Context, docID int64, v Vault) (*ExportResult, error) {
	doc, err := s.Document(ctx, docID)
	if err != nil {
		return nil, err
	}

	res := &ExportResult{}
	for _, f := range doc.Files {
		key := ExportKey(docID, f)
		exists, err := v.Exists(ctx, key)
		if err != nil {
			return res, fmt.Errorf("checking %s: %w", key, err)
		}
		if exists {
			s.logger.Debug("attachment already exported", "key", key)
			res.Skipped = append(res.Skipped, key)
			continue
		}

		if err := s.exportOne(ctx, f, key, v); err != nil {
			return res, err
		}
		s.logger.Info("attachment exported", "document", docID, "file", f.ID, "key", key, "size", f.FileSize)
		res.Exported = append(res.Exported, key)
	}
	return res, nil
}

func (s *Service) exportOne(ctx context.Context, f model.FileAttachment, key string, v Vault) error {
	pr, pw := io.Pipe()
	go func() {
		_, err := s.backend.DownloadFile(ctx, f.ID, pw, nil)
		pw.CloseWithError(err)
	}()

	if err := v.Put(ctx, key, pr, f.FileSize); err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("exporting %s: %w", key, err)
	}
	return nil
}
