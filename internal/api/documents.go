package api

import (
	"context"
	"fmt"
	"net/http"

	"dms-go/internal/model"
)

func (c *Client) listDocuments(ctx context.Context, path string) ([]model.Document, error) {
	var docs []model.Document
	if err := c.call(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	return c.listDocuments(ctx, "/documents")
}

func (c *Client) StarredDocuments(ctx context.Context) ([]model.Document, error) {
	return c.listDocuments(ctx, "/documents/starred")
}

func (c *Client) RecentDocuments(ctx context.Context) ([]model.Document, error) {
	return c.listDocuments(ctx, "/documents/recent")
}

func (c *Client) FolderDocuments(ctx context.Context, folderID int64) ([]model.Document, error) {
	return c.listDocuments(ctx, fmt.Sprintf("/documents/folder/%d", folderID))
}

func (c *Client) GetDocument(ctx context.Context, id int64) (*model.Document, error) {
	var doc model.Document
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/documents/%d", id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateDocument sends p as JSON, or as multipart when it carries new files.
func (c *Client) CreateDocument(ctx context.Context, p *model.DocumentPayload) (*model.Document, error) {
	var doc model.Document
	if err := c.sendPayload(ctx, http.MethodPost, "/documents", p.Request, p.Files, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDocument replaces document id with p.
func (c *Client) UpdateDocument(ctx context.Context, id int64, p *model.DocumentPayload) (*model.Document, error) {
	var doc model.Document
	if err := c.sendPayload(ctx, http.MethodPut, fmt.Sprintf("/documents/%d", id), p.Request, p.Files, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/documents/%d", id), nil, nil)
}
