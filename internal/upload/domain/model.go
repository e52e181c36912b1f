package domain

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/myinsta/portfolio-backend/internal/apperr"
)

// AllowedTypes are the image types accepted for upload.
var AllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// File is an upload candidate held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result is what the upload endpoint returns. URL carries the display
// transformation; OriginalURL is the untouched asset.
type Result struct {
	URL         string `json:"url"`
	OriginalURL string `json:"originalUrl"`
	PublicID    string `json:"public_id"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// Uploader stores a validated file with an image backend.
type Uploader interface {
	Upload(ctx context.Context, f File) (*Result, error)
}

var (
	ErrNoFile      = apperr.Validation("No file provided")
	ErrInvalidType = apperr.Validation("Invalid file type. Only JPEG, PNG, GIF, and WebP are allowed.")
)

func ErrTooLarge(maxBytes int64) error {
	return apperr.Validation(fmt.Sprintf("File too large. Maximum size is %s.", HumanSize(maxBytes)))
}

func IsAllowedType(ct string) bool {
	for _, t := range AllowedTypes {
		if t == ct {
			return true
		}
	}
	return false
}

// Validate checks presence, size and type. The type sniffed from the bytes
// must be allowed, and so must the declared type when it is specific. On
// success f.ContentType holds the sniffed type.
func Validate(f *File, maxBytes int64) error {
	if f == nil || len(f.Data) == 0 {
		return ErrNoFile
	}
	if int64(len(f.Data)) > maxBytes {
		return ErrTooLarge(maxBytes)
	}

	declared := f.ContentType
	if declared != "" && declared != "application/octet-stream" && !IsAllowedType(declared) {
		return ErrInvalidType
	}

	sniffed := mimetype.Detect(f.Data).String()
	if !IsAllowedType(sniffed) {
		return ErrInvalidType
	}
	f.ContentType = sniffed
	return nil
}

// DataURI encodes f as data:<mime>;base64,<payload>.
func DataURI(f File) string {
	return "data:" + f.ContentType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// Extension returns the canonical file extension for an allowed type.
func Extension(ct string) string {
	if m := mimetype.Lookup(ct); m != nil {
		return m.Extension()
	}
	return ""
}

// HumanSize renders whole mebibytes as "5MB" and anything else in bytes.
func HumanSize(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
