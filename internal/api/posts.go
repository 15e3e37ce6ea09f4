package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"dms-go/internal/model"
)

// ListPosts returns one page of the board, newest first.
func (c *Client) ListPosts(ctx context.Context, page, size int) (*model.PostPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("sort", "createdAt,desc")

	var out model.PostPage
	if err := c.call(ctx, http.MethodGet, "/posts?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreatePost(ctx context.Context, p *model.PostPayload) (*model.Post, error) {
	var out model.Post
	if err := c.sendPayload(ctx, http.MethodPost, "/posts", p.Request, p.Files, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePost(ctx context.Context, id int64, p *model.PostPayload) (*model.Post, error) {
	var out model.Post
	if err := c.sendPayload(ctx, http.MethodPut, fmt.Sprintf("/posts/%d", id), p.Request, p.Files, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, nil)
}
