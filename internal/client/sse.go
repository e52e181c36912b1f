package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	commentsdomain "github.com/myinsta/portfolio-backend/internal/comments/domain"
)

type sseEvent struct {
	Name string
	Data string
}

// readEvent reads one event from an SSE stream. Comment lines are skipped.
func readEvent(r *bufio.Reader) (sseEvent, error) {
	var ev sseEvent
	var data []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return ev, err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if ev.Name == "" && len(data) == 0 {
				continue
			}
			ev.Data = strings.Join(data, "\n")
			return ev, nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
}

// Feed is a live sequence of comment changes.
type Feed interface {
	Events() <-chan commentsdomain.ChangeEvent
	Close() error
}

// Stream is an open comment feed for one project.
type Stream struct {
	events    <-chan commentsdomain.ChangeEvent
	body      io.Closer
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Events is closed when the stream ends.
func (s *Stream) Events() <-chan commentsdomain.ChangeEvent { return s.events }

// Close releases the connection and waits for the reader to exit. Safe to
// call more than once.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		err = s.body.Close()
		<-s.done
	})
	return err
}

// StreamComments opens the project's SSE feed and returns once the server
// has confirmed the subscription.
func (c *Client) StreamComments(ctx context.Context, projectID string) (*Stream, error) {
	projectID, err := commentsdomain.ParseProjectID(projectID)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/projects/"+projectID+"/comments/stream", nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open comment stream: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	r := bufio.NewReader(resp.Body)
	first, err := readEvent(r)
	if err != nil || first.Name != "ready" {
		resp.Body.Close()
		if err == nil {
			err = fmt.Errorf("unexpected first event %q", first.Name)
		}
		return nil, fmt.Errorf("open comment stream: %w", err)
	}

	events := make(chan commentsdomain.ChangeEvent, 16)
	s := &Stream{events: events, body: resp.Body, stop: make(chan struct{}), done: make(chan struct{})}

	go func() {
		defer close(s.done)
		defer close(events)
		log := zerolog.Ctx(ctx)
		for {
			ev, err := readEvent(r)
			if err != nil {
				return
			}
			var change commentsdomain.ChangeEvent
			if err := json.Unmarshal([]byte(ev.Data), &change); err != nil {
				log.Warn().Err(err).Str("event", ev.Name).Msg("skipping malformed comment event")
				continue
			}
			select {
			case events <- change:
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return s, nil
}

// Subscribe is StreamComments behind the Feed interface.
func (c *Client) Subscribe(ctx context.Context, projectID string) (Feed, error) {
	s, err := c.StreamComments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s, nil
}
