package services

import (
	"errors"

	"github.com/laporwarga/backend/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrComplaintNotFound = response.NewNotFound("pengaduan tidak ditemukan")
	ErrNewsNotFound      = response.NewNotFound("berita tidak ditemukan")
	ErrUserNotFound      = response.NewNotFound("pengguna tidak ditemukan")
	ErrFeedbackNotFound  = response.NewNotFound("tanggapan tidak ditemukan")
)

func errUnknownConfigKey(key string) error {
	return response.NewBadRequest("unknown config key: " + key)
}

// notFoundOr maps gorm's missing-record error to nf and wraps anything else.
func notFoundOr(err error, nf *response.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return response.Wrap(err, "database error")
}
