package domain

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/myinsta/portfolio-backend/internal/apperr"
	commentsdomain "github.com/myinsta/portfolio-backend/internal/comments/domain"
)

const MaxTitleLen = 200

// Project is a portfolio entry. Optional fields are nil when unset.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	GithubURL   *string   `json:"github_url,omitempty"`
	DemoURL     *string   `json:"demo_url,omitempty"`
	Date        *string   `json:"date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Removal reports what a project delete took with it. Comments holds the
// rows removed alongside the project.
type Removal struct {
	Deleted  bool
	Comments []commentsdomain.Comment
}

var (
	ErrNotFound     = apperr.NotFound("project not found")
	ErrInvalidID    = apperr.Validation("invalid project id")
	ErrTitleMissing = apperr.Validation("title is required")
	ErrEmptyPatch   = apperr.Validation("no fields to update")
)

// ParseID validates a project identifier and returns its canonical form.
func ParseID(s string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}

type CreateInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	GithubURL   *string `json:"github_url,omitempty"`
	DemoURL     *string `json:"demo_url,omitempty"`
	Date        *string `json:"date,omitempty"`
}

// Normalize trims every field and drops blank optionals.
func (in *CreateInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	for _, f := range []**string{&in.Description, &in.ImageURL, &in.GithubURL, &in.DemoURL, &in.Date} {
		*f = trimOrNil(*f)
	}
}

func (in CreateInput) Validate() error {
	if err := validateTitle(in.Title); err != nil {
		return err
	}
	return validateOptionals(in.ImageURL, in.GithubURL, in.DemoURL, in.Date)
}

// UpdatePatch is a partial update. A nil field is left untouched and an
// empty string clears an optional field. Title may be changed but not
// cleared.
type UpdatePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	GithubURL   *string `json:"github_url,omitempty"`
	DemoURL     *string `json:"demo_url,omitempty"`
	Date        *string `json:"date,omitempty"`
}

func (p *UpdatePatch) Normalize() {
	for _, f := range []**string{&p.Title, &p.Description, &p.ImageURL, &p.GithubURL, &p.DemoURL, &p.Date} {
		if *f != nil {
			v := strings.TrimSpace(**f)
			*f = &v
		}
	}
}

func (p UpdatePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.ImageURL == nil &&
		p.GithubURL == nil && p.DemoURL == nil && p.Date == nil
}

func (p UpdatePatch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	return validateOptionals(nonEmpty(p.ImageURL), nonEmpty(p.GithubURL), nonEmpty(p.DemoURL), nonEmpty(p.Date))
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleMissing
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return apperr.Validationf("title must be at most %d characters", MaxTitleLen)
	}
	return nil
}

func validateOptionals(imageURL, githubURL, demoURL, date *string) error {
	for name, v := range map[string]*string{"image_url": imageURL, "github_url": githubURL, "demo_url": demoURL} {
		if v != nil && !IsHTTPURL(*v) {
			return apperr.Validationf("%s must be an absolute http(s) URL", name)
		}
	}
	if date != nil {
		if _, err := time.Parse(time.DateOnly, *date); err != nil {
			return apperr.Validation("date must be formatted YYYY-MM-DD")
		}
	}
	return nil
}

// IsHTTPURL reports whether s is an absolute http or https URL with a host.
func IsHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
