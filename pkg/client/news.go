package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/laporwarga/backend/pkg/validation"
)

func (f NewsFilter) values() url.Values {
	q := f.ListOptions.values()
	if f.CategoryID > 0 {
		q.Set("category_id", fmt.Sprint(f.CategoryID))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

func (c *Client) ListNews(ctx context.Context, filter NewsFilter) (*Page[News], error) {
	var out Page[News]
	if err := c.getJSON(ctx, "/news", filter.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetNews(ctx context.Context, id uint) (*News, error) {
	var out News
	if err := c.getJSON(ctx, fmt.Sprintf("/news/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func newsFields(form validation.NewsForm) map[string]string {
	return map[string]string{
		"title":       form.Title,
		"content":     form.Content,
		"category_id": fmt.Sprint(form.CategoryID),
		"date":        form.Date.Format("2006-01-02"),
	}
}

// CreateNews publishes a news item; image may be nil.
func (c *Client) CreateNews(ctx context.Context, form validation.NewsForm, image *File) (*News, error) {
	var out News
	if err := c.doMultipart(ctx, http.MethodPost, "/news", newsFields(form), "image", image, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateNews edits a news item. Without image the stored photo is kept;
// with one the server swaps it and removes the replaced asset itself.
func (c *Client) UpdateNews(ctx context.Context, id uint, form validation.NewsForm, image *File) (*News, error) {
	var out News
	if err := c.doMultipart(ctx, http.MethodPut, fmt.Sprintf("/news/%d", id), newsFields(form), "image", image, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteNews(ctx context.Context, ids []uint) (int64, error) {
	return c.bulkDelete(ctx, "/news", ids)
}

func (c *Client) ListNewsCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.getJSON(ctx, "/news-categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListComments(ctx context.Context, newsID uint, opts ListOptions) (*Page[Comment], error) {
	var out Page[Comment]
	if err := c.getJSON(ctx, fmt.Sprintf("/news/%d/comments", newsID), opts.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateComment(ctx context.Context, newsID uint, content string) (*Comment, error) {
	var out Comment
	path := fmt.Sprintf("/news/%d/comments", newsID)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteComments(ctx context.Context, ids []uint) (int64, error) {
	return c.bulkDelete(ctx, "/comments", ids)
}
