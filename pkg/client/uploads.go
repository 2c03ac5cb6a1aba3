package client

import (
	"context"
	"errors"
	"net/http"
)

// UploadImage stores one image and returns its public URL. kind is
// complaint, news or profile.
func (c *Client) UploadImage(ctx context.Context, kind string, file File) (string, error) {
	fields := map[string]string{}
	if kind != "" {
		fields["kind"] = kind
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := c.doMultipart(ctx, http.MethodPost, "/uploads", fields, "image", &file, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", errors.New("upload returned no url")
	}
	return out.URL, nil
}

// ImageHost uploads images of one kind through the API.
type ImageHost struct {
	Client *Client
	Kind   string
}

func (h ImageHost) Upload(ctx context.Context, name string, data []byte) (string, error) {
	return h.Client.UploadImage(ctx, h.Kind, File{Name: name, Data: data})
}
