package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrTooManyImages = errors.New("too many images")
	ErrImageTooLarge = errors.New("image too large")
	ErrImageType     = errors.New("unsupported image type")
)

// ImageRule constrains an image field. An empty AllowedMIME accepts any image/* type.
type ImageRule struct {
	MaxCount    int
	MaxBytes    int64
	AllowedMIME []string
}

var (
	ComplaintImages = ImageRule{MaxCount: 3, MaxBytes: 10 << 20}
	NewsImage       = ImageRule{MaxCount: 1, MaxBytes: 5 << 20, AllowedMIME: []string{"image/jpeg", "image/png", "image/gif"}}
	ProfileImage    = ImageRule{MaxCount: 1, MaxBytes: 5 << 20, AllowedMIME: []string{"image/jpeg", "image/png", "image/gif", "image/webp"}}
)

func (r ImageRule) CheckCount(n int) error {
	if r.MaxCount > 0 && n > r.MaxCount {
		return fmt.Errorf("%w: maksimal %d gambar", ErrTooManyImages, r.MaxCount)
	}
	return nil
}

func (r ImageRule) CheckSize(size int64) error {
	if r.MaxBytes > 0 && size > r.MaxBytes {
		return fmt.Errorf("%w: maksimal %d MB", ErrImageTooLarge, r.MaxBytes>>20)
	}
	return nil
}

// CheckContent sniffs head (the leading bytes of the file) and returns the
// detected MIME type.
func (r ImageRule) CheckContent(head []byte) (string, error) {
	mt := mimetype.Detect(head)
	mime := mt.String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if len(r.AllowedMIME) == 0 {
		if !strings.HasPrefix(mime, "image/") {
			return mime, fmt.Errorf("%w: %s", ErrImageType, mime)
		}
		return mime, nil
	}
	for _, allowed := range r.AllowedMIME {
		if mt.Is(allowed) {
			return allowed, nil
		}
	}
	return mime, fmt.Errorf("%w: %s", ErrImageType, mime)
}

// Check applies the size and content checks to a single file.
func (r ImageRule) Check(size int64, head []byte) error {
	if err := r.CheckSize(size); err != nil {
		return err
	}
	_, err := r.CheckContent(head)
	return err
}
