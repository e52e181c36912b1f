// Package client is a Go client for the portfolio API. It carries the
// client-side flows (session, admin CRUD, comments panel) used by the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/myinsta/portfolio-backend/config"
	"github.com/myinsta/portfolio-backend/internal/apperr"
	authservice "github.com/myinsta/portfolio-backend/internal/auth/service"
	commentsdomain "github.com/myinsta/portfolio-backend/internal/comments/domain"
	projectsdomain "github.com/myinsta/portfolio-backend/internal/projects/domain"
	uploaddomain "github.com/myinsta/portfolio-backend/internal/upload/domain"
)

// TokenSource yields the bearer token for the next request. An empty token
// sends the request anonymously.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Options struct {
	Timeout        time.Duration
	UploadMaxBytes int64
}

type Client struct {
	baseURL  string
	tokens   TokenSource
	http     *http.Client
	stream   *http.Client
	maxBytes int64
}

func New(baseURL string, tokens TokenSource, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UploadMaxBytes <= 0 {
		opts.UploadMaxBytes = config.DefaultUploadMaxBytes
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tokens:   tokens,
		http:     &http.Client{Timeout: opts.Timeout},
		stream:   &http.Client{},
		maxBytes: opts.UploadMaxBytes,
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// do sends the request and decodes a 2xx body into out. Error bodies become
// *apperr.Error values with the kind taken from the response.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Upstream("request failed", err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
		if body.Error == "" {
			body.Error = resp.Status
		}
	}

	kind := apperr.FromStatus(resp.StatusCode)
	if body.Code != "" {
		kind = apperr.Kind(body.Code)
	}
	return &apperr.Error{Kind: kind, Message: body.Error, Details: body.Details}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) Me(ctx context.Context) (*authservice.Me, error) {
	var out struct {
		Me authservice.Me `json:"me"`
	}
	if err := c.getJSON(ctx, "/me", &out); err != nil {
		return nil, err
	}
	return &out.Me, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]projectsdomain.Project, error) {
	var out struct {
		Projects []projectsdomain.Project `json:"projects"`
	}
	if err := c.getJSON(ctx, "/projects", &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*projectsdomain.Project, error) {
	id, err := projectsdomain.ParseID(id)
	if err != nil {
		return nil, err
	}
	var out struct {
		Project projectsdomain.Project `json:"project"`
	}
	if err := c.getJSON(ctx, "/projects/"+id, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

func (c *Client) CreateProject(ctx context.Context, in projectsdomain.CreateInput) (*projectsdomain.Project, error) {
	var out struct {
		Project projectsdomain.Project `json:"project"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/projects", in, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, patch projectsdomain.UpdatePatch) (*projectsdomain.Project, error) {
	id, err := projectsdomain.ParseID(id)
	if err != nil {
		return nil, err
	}
	var out struct {
		Project projectsdomain.Project `json:"project"`
	}
	if err := c.sendJSON(ctx, http.MethodPatch, "/projects/"+id, patch, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) (bool, error) {
	id, err := projectsdomain.ParseID(id)
	if err != nil {
		return false, err
	}
	var out struct {
		Deleted bool `json:"deleted"`
	}
	if err := c.sendJSON(ctx, http.MethodDelete, "/projects/"+id, nil, &out); err != nil {
		return false, err
	}
	return out.Deleted, nil
}

func (c *Client) ListComments(ctx context.Context, projectID string) ([]commentsdomain.Comment, error) {
	projectID, err := commentsdomain.ParseProjectID(projectID)
	if err != nil {
		return nil, err
	}
	var out struct {
		Comments []commentsdomain.Comment `json:"comments"`
	}
	if err := c.getJSON(ctx, "/projects/"+projectID+"/comments", &out); err != nil {
		return nil, err
	}
	return out.Comments, nil
}

func (c *Client) PostComment(ctx context.Context, projectID, content string) (*commentsdomain.Comment, error) {
	projectID, err := commentsdomain.ParseProjectID(projectID)
	if err != nil {
		return nil, err
	}
	content, err = commentsdomain.NormalizeContent(content)
	if err != nil {
		return nil, err
	}
	var out struct {
		Comment commentsdomain.Comment `json:"comment"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/projects/"+projectID+"/comments", map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return &out.Comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, projectID, commentID string) (bool, error) {
	projectID, err := commentsdomain.ParseProjectID(projectID)
	if err != nil {
		return false, err
	}
	commentID, err = commentsdomain.ParseID(commentID)
	if err != nil {
		return false, err
	}
	var out struct {
		Deleted bool `json:"deleted"`
	}
	path := "/projects/" + projectID + "/comments/" + url.PathEscape(commentID)
	if err := c.sendJSON(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return false, err
	}
	return out.Deleted, nil
}

// Upload checks type and size locally, then posts the file as multipart
// field "file".
func (c *Client) Upload(ctx context.Context, f uploaddomain.File) (*uploaddomain.Result, error) {
	if err := uploaddomain.Validate(&f, c.maxBytes); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	h.Set("Content-Type", f.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var out uploaddomain.Result
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
