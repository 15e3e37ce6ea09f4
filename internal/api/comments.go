package api

import (
	"context"
	"fmt"
	"net/http"

	"dms-go/internal/model"
)

func (c *Client) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	var out []model.Comment
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/comments/%d", postID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateComment(ctx context.Context, req model.CommentRequest) (*model.Comment, error) {
	var out model.Comment
	if err := c.call(ctx, http.MethodPost, "/comments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateComment(ctx context.Context, id int64, req model.CommentRequest) (*model.Comment, error) {
	var out model.Comment
	if err := c.call(ctx, http.MethodPut, fmt.Sprintf("/comments/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", id), nil, nil)
}
