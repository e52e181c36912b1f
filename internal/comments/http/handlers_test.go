package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myinsta/portfolio-backend/internal/auth"
	authdomain "github.com/myinsta/portfolio-backend/internal/auth/domain"
	"github.com/myinsta/portfolio-backend/internal/auth/middleware"
	"github.com/myinsta/portfolio-backend/internal/comments/domain"
	"github.com/myinsta/portfolio-backend/internal/comments/service"
	"github.com/myinsta/portfolio-backend/internal/realtime"
)

const (
	projectID = "00000000-0000-0000-0000-000000000001"
	commentID = "00000000-0000-0000-0000-0000000000c1"
)

type store struct {
	rows []domain.Comment
}

func (s *store) List(_ context.Context, pid string) ([]domain.Comment, error) {
	if pid != projectID {
		return []domain.Comment{}, nil
	}
	return s.rows, nil
}

func (s *store) ProjectExists(_ context.Context, pid string) (bool, error) { return pid == projectID, nil }

func (s *store) Create(_ context.Context, pid, uid, content string) (*domain.Comment, error) {
	if pid != projectID {
		return nil, domain.ErrProjectNotFound
	}
	c := domain.Comment{ID: commentID, ProjectID: pid, UserID: uid, Content: content, CreatedAt: time.Now()}
	s.rows = append([]domain.Comment{c}, s.rows...)
	return &c, nil
}

func (s *store) Delete(_ context.Context, pid, cid string) (*domain.Comment, error) {
	for i, c := range s.rows {
		if c.ID == cid {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return &c, nil
		}
	}
	return nil, nil
}

type gate struct{}

func (gate) RequireAdmin(_ context.Context, actor *authdomain.Identity) error {
	if actor == nil {
		return authdomain.ErrUnauthenticated
	}
	if actor.UserID != "admin" {
		return authdomain.ErrNotAdmin
	}
	return nil
}

func setup(keepAlive time.Duration) (*gin.Engine, *realtime.MemoryBroker) {
	gin.SetMode(gin.TestMode)
	broker := realtime.NewMemoryBroker()
	svc := service.NewCommentService(&store{}, gate{}, broker, service.Options{PublishWrites: true})

	r := gin.New()
	api := r.Group("/api/v1", middleware.Authenticate(auth.Header{}))
	New(svc, keepAlive).Register(api.Group("/projects"))
	return r, broker
}

func call(r http.Handler, method, path, uid, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("X-User-Id", uid)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestCreateAndList(t *testing.T) {
	r, _ := setup(0)
	base := "/api/v1/projects/" + projectID + "/comments"

	w, body := call(r, http.MethodPost, base, "", `{"content":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", body["code"])

	w, _ = call(r, http.MethodPost, base, "u1", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(r, http.MethodPost, "/api/v1/projects/00000000-0000-0000-0000-0000000000ff/comments", "u1", `{"content":"hi"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = call(r, http.MethodPost, base, "u1", `{"content":"  lovely  "}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "lovely", body["comment"].(map[string]any)["content"])

	w, body = call(r, http.MethodGet, base, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["comments"], 1)

	w, _ = call(r, http.MethodGet, "/api/v1/projects/xyz/comments", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreate_MalformedBody(t *testing.T) {
	r, _ := setup(0)
	base := "/api/v1/projects/" + projectID + "/comments"

	w, body := call(r, http.MethodPost, base, "u1", `{"content":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid body", body["error"])

	w, body = call(r, http.MethodPost, base, "", `{"content":`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", body["code"])

	w, body = call(r, http.MethodPost, "/api/v1/projects/xyz/comments", "u1", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid project id", body["error"])

	w, body = call(r, http.MethodPost, base, "u1", `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "content is required", body["error"])
}

func TestDelete(t *testing.T) {
	r, _ := setup(0)
	base := "/api/v1/projects/" + projectID + "/comments"
	_, _ = call(r, http.MethodPost, base, "u1", `{"content":"spam"}`)

	w, _ := call(r, http.MethodDelete, base+"/"+commentID, "u1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := call(r, http.MethodDelete, base+"/"+commentID, "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["deleted"])

	w, body = call(r, http.MethodDelete, base+"/"+commentID, "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["deleted"])
}

func TestStream(t *testing.T) {
	r, broker := setup(50 * time.Millisecond)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/projects/"+projectID+"/comments/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 64)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	waitFor := func(prefix string) string {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case l, ok := <-lines:
				require.True(t, ok, "stream ended waiting for %q", prefix)
				if strings.HasPrefix(l, prefix) {
					return l
				}
			case <-deadline:
				t.Fatalf("timed out waiting for %q", prefix)
			}
		}
	}

	waitFor("event: ready")
	assert.Contains(t, waitFor("data: "), projectID)
	waitFor(": keep-alive")

	postReq, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/projects/"+projectID+"/comments", bytes.NewBufferString(`{"content":"live"}`))
	postReq.Header.Set("X-User-Id", "u1")
	postResp, err := http.DefaultClient.Do(postReq)
	require.NoError(t, err)
	postResp.Body.Close()
	require.Equal(t, http.StatusCreated, postResp.StatusCode)

	waitFor("event: insert")
	data := strings.TrimPrefix(waitFor("data: "), "data: ")
	var ev domain.ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, domain.EventInsert, ev.Type)
	assert.Equal(t, "live", ev.New.Content)

	topic := realtime.CommentsTopic(projectID)
	assert.Equal(t, 1, broker.Subscribers(topic))
	cancel()
	assert.Eventually(t, func() bool { return broker.Subscribers(topic) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStream_UnknownProject(t *testing.T) {
	r, broker := setup(0)

	w, _ := call(r, http.MethodGet, "/api/v1/projects/00000000-0000-0000-0000-0000000000ff/comments/stream", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, broker.Subscribers(realtime.CommentsTopic("00000000-0000-0000-0000-0000000000ff")))
}

func TestEventNameAndFraming(t *testing.T) {
	assert.Equal(t, "insert", eventName([]byte(`{"type":"INSERT"}`)))
	assert.Equal(t, "delete", eventName([]byte(`{"type":"DELETE"}`)))
	assert.Equal(t, "message", eventName([]byte(`garbage`)))

	var buf bytes.Buffer
	writeEvent(&buf, "insert", []byte("a\nb"))
	assert.Equal(t, "event: insert\ndata: a\ndata: b\n\n", buf.String())
}
