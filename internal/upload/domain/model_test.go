package domain

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myinsta/portfolio-backend/internal/apperr"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	img := pngBytes(t, 2, 3)

	t.Run("accepts png and records sniffed type", func(t *testing.T) {
		f := &File{Name: "a.png", ContentType: "application/octet-stream", Data: img}
		require.NoError(t, Validate(f, 5<<20))
		assert.Equal(t, "image/png", f.ContentType)
	})

	t.Run("missing file", func(t *testing.T) {
		assert.ErrorIs(t, Validate(nil, 10), ErrNoFile)
		assert.ErrorIs(t, Validate(&File{}, 10), ErrNoFile)
	})

	t.Run("too large", func(t *testing.T) {
		err := Validate(&File{ContentType: "image/png", Data: img}, int64(len(img)-1))
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "File too large")
	})

	t.Run("declared type not allowed", func(t *testing.T) {
		err := Validate(&File{ContentType: "application/pdf", Data: img}, 5<<20)
		assert.ErrorIs(t, err, ErrInvalidType)
	})

	t.Run("bytes are not an image", func(t *testing.T) {
		err := Validate(&File{ContentType: "image/png", Data: []byte("%PDF-1.4 not an image")}, 5<<20)
		assert.ErrorIs(t, err, ErrInvalidType)
	})
}

func TestDataURI(t *testing.T) {
	got := DataURI(File{ContentType: "image/gif", Data: []byte("GIF89a")})
	assert.Equal(t, "data:image/gif;base64,R0lGODlh", got)
}

func TestHumanSizeAndExtension(t *testing.T) {
	assert.Equal(t, "5MB", HumanSize(5<<20))
	assert.Equal(t, "1500 bytes", HumanSize(1500))
	assert.True(t, strings.HasPrefix(Extension("image/jpeg"), ".jp"))
	assert.Equal(t, ".webp", Extension("image/webp"))
}
