package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/laporwarga/backend/pkg/client"
	"github.com/laporwarga/backend/pkg/validation"
)

// FilterByTitle keeps items whose title contains q, ignoring case.
func FilterByTitle(items []client.News, q string) []client.News {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return items
	}
	out := make([]client.News, 0, len(items))
	for _, n := range items {
		if strings.Contains(strings.ToLower(n.Title), q) {
			out = append(out, n)
		}
	}
	return out
}

type NewsBrowser struct {
	api    NewsAPI
	notify Notifier
}

func NewNewsBrowser(api NewsAPI, notify Notifier) *NewsBrowser {
	return &NewsBrowser{api: api, notify: notify}
}

// Page fetches one page and filters it by title on the client.
func (b *NewsBrowser) Page(ctx context.Context, page, size int, query string) (*client.Page[client.News], error) {
	res, err := b.api.ListNews(ctx, client.NewsFilter{ListOptions: client.ListOptions{Page: page, PageSize: size}})
	if err != nil {
		b.notify.Error(client.MessageOf(err, MsgLoadFailed))
		return nil, err
	}
	res.Items = FilterByTitle(res.Items, query)
	return res, nil
}

type NewsEditor struct {
	api    NewsAPI
	notify Notifier
}

func NewNewsEditor(api NewsAPI, notify Notifier) *NewsEditor {
	return &NewsEditor{api: api, notify: notify}
}

func validateNews(form *validation.NewsForm, image *client.File) validation.FieldErrors {
	fields := validation.Validate(form)
	if image != nil {
		if err := validation.NewsImage.Check(int64(len(image.Data)), headOf(image.Data)); err != nil {
			if fields == nil {
				fields = validation.FieldErrors{}
			}
			fields["image"] = imageMessage(err)
		}
	}
	return fields
}

func headOf(data []byte) []byte {
	if len(data) > 3072 {
		return data[:3072]
	}
	return data
}

func imageMessage(err error) string {
	switch {
	case errors.Is(err, validation.ErrImageTooLarge):
		return "ukuran gambar maksimal 5 MB"
	case errors.Is(err, validation.ErrImageType):
		return "format gambar harus jpeg, png, atau gif"
	default:
		return "gambar tidak valid"
	}
}

func (e *NewsEditor) Create(ctx context.Context, form validation.NewsForm, image *client.File) (*client.News, validation.FieldErrors, error) {
	if fields := validateNews(&form, image); fields != nil {
		return nil, fields, nil
	}
	news, err := e.api.CreateNews(ctx, form, image)
	if err != nil {
		e.notify.Error(client.MessageOf(err, MsgGenericError))
		return nil, nil, err
	}
	e.notify.Success(MsgNewsSaved)
	return news, nil, nil
}

// Update edits current. Without image the stored photo is kept.
func (e *NewsEditor) Update(ctx context.Context, current *client.News, form validation.NewsForm, image *client.File) (*client.News, validation.FieldErrors, error) {
	if fields := validateNews(&form, image); fields != nil {
		return nil, fields, nil
	}
	news, err := e.api.UpdateNews(ctx, current.ID, form, image)
	if err != nil {
		e.notify.Error(client.MessageOf(err, MsgGenericError))
		return nil, nil, err
	}
	e.notify.Success(MsgNewsSaved)
	return news, nil, nil
}

// Delete removes one or many news items with the same call.
func (e *NewsEditor) Delete(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := e.api.DeleteNews(ctx, ids); err != nil {
		e.notify.Error(client.MessageOf(err, MsgDeleteFailed))
		return err
	}
	e.notify.Success(MsgDeleteSuccess)
	return nil
}

// Comments is the comment thread under one news item.
type Comments struct {
	api    NewsAPI
	notify Notifier
	newsID uint

	mu    sync.Mutex
	items []client.Comment
	total int64
}

func NewComments(api NewsAPI, notify Notifier, newsID uint) *Comments {
	return &Comments{api: api, notify: notify, newsID: newsID}
}

func (c *Comments) Load(ctx context.Context, opts client.ListOptions) error {
	page, err := c.api.ListComments(ctx, c.newsID, opts)
	if err != nil {
		c.notify.Error(client.MessageOf(err, MsgLoadFailed))
		return err
	}
	c.mu.Lock()
	c.items = page.Items
	c.total = page.Total
	c.mu.Unlock()
	return nil
}

func (c *Comments) Items() []client.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]client.Comment(nil), c.items...)
}

// Append posts a comment. Blank content is rejected before any call.
func (c *Comments) Append(ctx context.Context, content string) (validation.FieldErrors, error) {
	form := validation.CommentForm{Content: content}
	if fields := validation.Validate(&form); fields != nil {
		return fields, nil
	}
	comment, err := c.api.CreateComment(ctx, c.newsID, form.Content)
	if err != nil {
		c.notify.Error(client.MessageOf(err, MsgGenericError))
		return nil, err
	}
	c.mu.Lock()
	c.items = append(c.items, *comment)
	c.total++
	c.mu.Unlock()
	c.notify.Success(MsgCommentSaved)
	return nil, nil
}

// Deleter returns a bulk deleter for admin moderation of comments.
func (c *Comments) Deleter() *BulkDeleter {
	return NewBulkDeleter(c.api.DeleteComments, c.notify)
}
