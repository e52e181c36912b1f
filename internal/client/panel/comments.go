// Package panel holds the client-side controllers for the comments panel
// and the admin screen.
package panel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	authdomain "github.com/myinsta/portfolio-backend/internal/auth/domain"
	"github.com/myinsta/portfolio-backend/internal/client"
	"github.com/myinsta/portfolio-backend/internal/client/session"
	"github.com/myinsta/portfolio-backend/internal/comments/domain"
)

type State int

const (
	StateClosed State = iota
	StateLoading
	StateLoaded
	// StateDisconnected keeps the last list but the feed has ended. Close
	// and Open again to resume live updates.
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateDisconnected:
		return "disconnected"
	default:
		return "closed"
	}
}

var (
	ErrPanelOpen   = errors.New("comments panel already open")
	ErrPanelClosed = errors.New("comments panel is closed")
	ErrFeedEnded   = errors.New("comment feed ended")
)

type CommentsAPI interface {
	ListComments(ctx context.Context, projectID string) ([]domain.Comment, error)
	PostComment(ctx context.Context, projectID, content string) (*domain.Comment, error)
	Subscribe(ctx context.Context, projectID string) (client.Feed, error)
}

type Session interface {
	Current() session.State
}

// CommentsPanel mirrors one project's comments: it loads the list, applies
// live changes by comment id and posts new comments.
type CommentsPanel struct {
	api       CommentsAPI
	sess      Session
	projectID string
	onChange  func([]domain.Comment)

	mu       sync.Mutex
	state    State
	comments []domain.Comment
	feed     client.Feed
	cancel   context.CancelFunc
	done     chan struct{}
	wg       sync.WaitGroup
}

var closedCh = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// NewCommentsPanel returns a closed panel. onChange, when set, receives a
// snapshot after every change and is called without the panel lock held.
func NewCommentsPanel(api CommentsAPI, sess Session, projectID string, onChange func([]domain.Comment)) *CommentsPanel {
	return &CommentsPanel{api: api, sess: sess, projectID: projectID, onChange: onChange}
}

func (p *CommentsPanel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Comments returns the current list, newest first.
func (p *CommentsPanel) Comments() []domain.Comment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Comment(nil), p.comments...)
}

// Open subscribes to the feed, then loads the list. Events that arrive
// during the load are applied on top of it. A failed Open leaves the panel
// closed with nothing held.
func (p *CommentsPanel) Open(ctx context.Context) error {
	if _, err := domain.ParseProjectID(p.projectID); err != nil {
		return err
	}

	p.mu.Lock()
	if p.state != StateClosed {
		p.mu.Unlock()
		return ErrPanelOpen
	}
	p.state = StateLoading
	feedCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.mu.Unlock()

	feed, err := p.api.Subscribe(feedCtx, p.projectID)
	if err != nil {
		p.Close()
		return fmt.Errorf("subscribe: %w", err)
	}

	p.mu.Lock()
	if p.state != StateLoading {
		p.mu.Unlock()
		feed.Close()
		return ErrPanelClosed
	}
	p.feed = feed
	p.mu.Unlock()

	list, err := p.api.ListComments(ctx, p.projectID)
	if err != nil {
		p.Close()
		return fmt.Errorf("load comments: %w", err)
	}

	p.mu.Lock()
	if p.state != StateLoading {
		p.mu.Unlock()
		return ErrPanelClosed
	}
	p.comments = nil
	for _, c := range list {
		p.upsertLocked(c)
	}
	p.state = StateLoaded
	done := make(chan struct{})
	p.done = done
	p.wg.Add(1)
	p.mu.Unlock()

	go p.pump(feedCtx, feed, done)
	p.notify()
	return nil
}

// Done is closed once the panel stops receiving live updates, either
// because it was closed or because the feed ended. In the latter case the
// state is StateDisconnected.
func (p *CommentsPanel) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		return closedCh
	}
	return p.done
}

func (p *CommentsPanel) pump(ctx context.Context, feed client.Feed, done chan struct{}) {
	defer p.wg.Done()
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-feed.Events():
			if !ok {
				p.disconnect()
				return
			}
			if p.apply(ev) {
				p.notify()
			}
		}
	}
}

func (p *CommentsPanel) disconnect() {
	p.mu.Lock()
	changed := p.state == StateLoaded
	if changed {
		p.state = StateDisconnected
	}
	p.mu.Unlock()
	if changed {
		p.notify()
	}
}

// apply reconciles one change event. Inserts are upserts so the echo of a
// locally appended comment collapses into the existing entry.
func (p *CommentsPanel) apply(ev domain.ChangeEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateLoaded {
		return false
	}

	switch ev.Type {
	case domain.EventInsert:
		if ev.New == nil || ev.New.ProjectID != p.projectID {
			return false
		}
		p.upsertLocked(*ev.New)
		return true
	case domain.EventDelete:
		if ev.Old == nil {
			return false
		}
		return p.removeLocked(ev.Old.ID)
	}
	return false
}

// Submit posts content as the signed-in user and shows the stored comment
// immediately.
func (p *CommentsPanel) Submit(ctx context.Context, content string) (*domain.Comment, error) {
	if !p.sess.Current().SignedIn() {
		return nil, authdomain.ErrUnauthenticated
	}
	if st := p.State(); st != StateLoaded && st != StateDisconnected {
		return nil, ErrPanelClosed
	}

	c, err := p.api.PostComment(ctx, p.projectID, content)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	changed := p.state == StateLoaded || p.state == StateDisconnected
	if changed {
		p.upsertLocked(*c)
	}
	p.mu.Unlock()
	if changed {
		p.notify()
	}
	return c, nil
}

// AuthorLabel is "You" for the signed-in user's comments and "User"
// otherwise.
func (p *CommentsPanel) AuthorLabel(c domain.Comment) string {
	if st := p.sess.Current(); st.SignedIn() && c.Mine(st.Identity.UserID) {
		return "You"
	}
	return "User"
}

// Close releases the subscription and waits for the pump to exit. It is
// safe to call at any time and more than once.
func (p *CommentsPanel) Close() error {
	p.mu.Lock()
	if p.state == StateClosed && p.cancel == nil {
		p.mu.Unlock()
		return nil
	}
	p.state = StateClosed
	feed, cancel := p.feed, p.cancel
	p.feed, p.cancel = nil, nil
	p.comments = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if feed != nil {
		err = feed.Close()
	}
	p.wg.Wait()
	return err
}

func (p *CommentsPanel) upsertLocked(c domain.Comment) {
	for i := range p.comments {
		if p.comments[i].ID == c.ID {
			p.comments[i] = c
			return
		}
	}
	p.comments = append(p.comments, c)
	sort.SliceStable(p.comments, func(i, j int) bool {
		return p.comments[i].CreatedAt.After(p.comments[j].CreatedAt)
	})
}

func (p *CommentsPanel) removeLocked(id string) bool {
	for i := range p.comments {
		if p.comments[i].ID == id {
			p.comments = append(p.comments[:i], p.comments[i+1:]...)
			return true
		}
	}
	return false
}

func (p *CommentsPanel) notify() {
	if p.onChange != nil {
		p.onChange(p.Comments())
	}
}

// FormatAge renders t relative to now the way the comment list shows it.
func FormatAge(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return t.Format("Jan 2, 2006")
	}
}
