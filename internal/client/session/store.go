// Package session holds the signed-in identity for client programs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	authdomain "github.com/myinsta/portfolio-backend/internal/auth/domain"
)

// State is a snapshot of the session. Handle is derived once at sign-in.
type State struct {
	Identity *authdomain.Identity `json:"identity,omitempty"`
	Token    string               `json:"token,omitempty"`
	Handle   string               `json:"handle,omitempty"`
}

func (s State) SignedIn() bool { return s.Identity != nil }

// Store keeps the current session, persists it to a file when a path is
// set and notifies subscribers on every change.
type Store struct {
	mu     sync.RWMutex
	state  State
	path   string
	nextID int
	subs   map[int]func(State)
}

// NewStore returns an in-memory store.
func NewStore() *Store {
	return &Store{subs: make(map[int]func(State))}
}

// Open returns a store backed by path, loading any session saved there.
func Open(path string) (*Store, error) {
	s := NewStore()
	s.path = path

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(raw, &s.state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	if s.state.Identity != nil && s.state.Handle == "" {
		s.state.Handle = authdomain.DeriveHandle(*s.state.Identity)
	}
	return s, nil
}

func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token implements client.TokenSource. Signed-out sessions yield "".
func (s *Store) Token(context.Context) (string, error) {
	return s.Current().Token, nil
}

func (s *Store) SignIn(id authdomain.Identity, token string) error {
	return s.set(State{Identity: &id, Token: token, Handle: authdomain.DeriveHandle(id)})
}

func (s *Store) SignOut() error {
	return s.set(State{})
}

// Subscribe registers fn for session changes and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) set(next State) error {
	s.mu.Lock()
	s.state = next
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	err := s.persistLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return err
}

func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	if s.state.Identity == nil {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session: %w", err)
		}
		return nil
	}

	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, s.path)
}
