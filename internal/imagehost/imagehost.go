// Package imagehost stores uploaded pictures and hands back public URLs.
package imagehost

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/laporwarga/backend/internal/config"
)

var ErrForeignURL = errors.New("url is not managed by this image host")

// Store persists images. Delete of an unknown URL returns ErrForeignURL.
type Store interface {
	Save(ctx context.Context, folder, filename string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// New picks the remote host when an endpoint is configured and the local
// directory otherwise.
func New(cfg *config.UploadConfig) Store {
	if cfg.RemoteEndpoint != "" {
		return NewRemoteStore(cfg.RemoteEndpoint, cfg.RemoteAPIKey, nil)
	}
	return NewLocalStore(cfg.Dir, cfg.PublicBaseURL)
}

// objectName builds "<folder>/<uuid><ext>" so user file names never reach the disk.
func objectName(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 6 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	name := uuid.NewString() + ext
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" || folder == "." {
		return name
	}
	return folder + "/" + name
}
