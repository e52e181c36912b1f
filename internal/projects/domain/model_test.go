package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myinsta/portfolio-backend/internal/apperr"
)

func ptr(s string) *string { return &s }

func TestParseID(t *testing.T) {
	id, err := ParseID(" 00000000-0000-0000-0000-000000000001 ")
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", id)

	for _, bad := range []string{"", "1", "not-a-uuid", "00000000-0000-0000-0000-00000000000g"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, bad)
	}
}

func TestCreateInput(t *testing.T) {
	t.Run("title only", func(t *testing.T) {
		in := CreateInput{Title: "  Pixel Bakery  ", Description: ptr("   ")}
		in.Normalize()
		require.NoError(t, in.Validate())
		assert.Equal(t, "Pixel Bakery", in.Title)
		assert.Nil(t, in.Description)
	})

	tests := []struct {
		name string
		in   CreateInput
		msg  string
	}{
		{"blank title", CreateInput{Title: "   "}, "title is required"},
		{"long title", CreateInput{Title: strings.Repeat("x", MaxTitleLen+1)}, "at most 200"},
		{"relative url", CreateInput{Title: "t", GithubURL: ptr("github.com/me")}, "github_url"},
		{"ftp url", CreateInput{Title: "t", DemoURL: ptr("ftp://example.com")}, "demo_url"},
		{"bad date", CreateInput{Title: "t", Date: ptr("12/01/2024")}, "YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			err := tt.in.Validate()
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	full := CreateInput{
		Title:     "Weather",
		ImageURL:  ptr("https://res.cloudinary.com/demo/image/upload/x.png"),
		GithubURL: ptr("https://github.com/me/weather"),
		DemoURL:   ptr("http://weather.example.com"),
		Date:      ptr("2024-03-01"),
	}
	assert.NoError(t, full.Validate())
}

func TestUpdatePatch(t *testing.T) {
	assert.ErrorIs(t, UpdatePatch{}.Validate(), ErrEmptyPatch)

	p := UpdatePatch{Title: ptr("  ")}
	p.Normalize()
	assert.ErrorIs(t, p.Validate(), ErrTitleMissing)

	clear := UpdatePatch{DemoURL: ptr(" "), Date: ptr("")}
	clear.Normalize()
	require.NoError(t, clear.Validate())
	assert.Equal(t, "", *clear.DemoURL)

	bad := UpdatePatch{ImageURL: ptr("not a url")}
	assert.Error(t, bad.Validate())
}
