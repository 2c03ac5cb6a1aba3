package services

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/laporwarga/backend/internal/config"
	"github.com/laporwarga/backend/internal/imagehost"
	"github.com/laporwarga/backend/pkg/logger"
	"github.com/laporwarga/backend/pkg/response"
	"github.com/laporwarga/backend/pkg/validation"
)

// sniffLen is how much of a file mimetype needs to classify it.
const sniffLen = 3072

// ImageKind selects the folder and constraints of an upload.
type ImageKind string

const (
	KindComplaint ImageKind = "complaint"
	KindNews      ImageKind = "news"
	KindProfile   ImageKind = "profile"
)

// ImageFile is one uploaded file as read from the request.
type ImageFile struct {
	Name string
	Size int64
	Body io.Reader
}

type UploadService struct {
	store imagehost.Store
	rules map[ImageKind]validation.ImageRule
}

func NewUploadService(store imagehost.Store, cfg *config.UploadConfig) *UploadService {
	complaint := validation.ComplaintImages
	news := validation.NewsImage
	if cfg != nil {
		if cfg.MaxComplaintSize > 0 {
			complaint.MaxBytes = cfg.MaxComplaintSize
		}
		if cfg.MaxNewsSize > 0 {
			news.MaxBytes = cfg.MaxNewsSize
		}
	}
	return &UploadService{
		store: store,
		rules: map[ImageKind]validation.ImageRule{
			KindComplaint: complaint,
			KindNews:      news,
			KindProfile:   validation.ProfileImage,
		},
	}
}

func ParseImageKind(s string) (ImageKind, bool) {
	switch ImageKind(s) {
	case "", KindComplaint:
		return KindComplaint, true
	case KindNews, KindProfile:
		return ImageKind(s), true
	}
	return "", false
}

func (s *UploadService) Rule(kind ImageKind) validation.ImageRule {
	return s.rules[kind]
}

// Save checks size and sniffed content type, then stores the file.
func (s *UploadService) Save(ctx context.Context, kind ImageKind, file *ImageFile) (string, error) {
	rule, ok := s.rules[kind]
	if !ok {
		return "", response.NewBadRequest("jenis unggahan tidak dikenal")
	}
	if err := rule.CheckSize(file.Size); err != nil {
		return "", imageError(err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", response.Wrap(err, "gagal membaca berkas")
	}
	head = head[:n]

	contentType, err := rule.CheckContent(head)
	if err != nil {
		return "", imageError(err)
	}

	url, err := s.store.Save(ctx, string(kind), file.Name, io.MultiReader(bytes.NewReader(head), file.Body), contentType)
	if err != nil {
		return "", response.Wrap(err, "gagal mengunggah gambar")
	}
	return url, nil
}

// Discard deletes an asset this host owns. Foreign URLs are left alone.
func (s *UploadService) Discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.store.Delete(ctx, url); err != nil && !errors.Is(err, imagehost.ErrForeignURL) {
		logger.Warnf("[Upload] Failed to delete %s: %v", url, err)
	}
}

func imageError(err error) error {
	field := "image"
	return response.NewUnprocessable(err.Error(), map[string]string{field: err.Error()})
}
