package api

import (
	"context"
	"fmt"
	"net/http"

	"dms-go/internal/model"
)

func (c *Client) ListFolders(ctx context.Context) ([]model.Folder, error) {
	var folders []model.Folder
	if err := c.call(ctx, http.MethodGet, "/folders", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (c *Client) CreateFolder(ctx context.Context, req model.FolderRequest) (*model.Folder, error) {
	var f model.Folder
	if err := c.call(ctx, http.MethodPost, "/folders", req, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) RenameFolder(ctx context.Context, id int64, req model.FolderRequest) (*model.Folder, error) {
	var f model.Folder
	if err := c.call(ctx, http.MethodPut, fmt.Sprintf("/folders/%d", id), req, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) DeleteFolder(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/folders/%d", id), nil, nil)
}
