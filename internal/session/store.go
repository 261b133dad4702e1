package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// State is the authentication state of a Store.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Credentials is what gets persisted after a successful login.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Store holds the current credentials, persisted as JSON at path.
// The zero path keeps the store in memory only.
type Store struct {
	mu    sync.Mutex
	path  string
	creds Credentials
	subs  map[int]func(State)
	next  int
}

// Open loads the store at path. A missing file yields an empty store.
// A corrupt file is removed and also yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, subs: make(map[int]func(State))}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if err := json.Unmarshal(data, &s.creds); err != nil {
		_ = os.Remove(path)
		s.creds = Credentials{}
	}
	return s, nil
}

// NewMemory returns a store that is never written to disk.
func NewMemory(creds Credentials) *Store {
	return &Store{creds: creds, subs: make(map[int]func(State))}
}

// Get returns the stored credentials.
func (s *Store) Get() Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// Token returns the stored token, or "" when logged out.
func (s *Store) Token() string {
	return s.Get().Token
}

// State reports whether credentials are held. It does not check expiry.
func (s *Store) State() State {
	if s.Token() == "" {
		return Unauthenticated
	}
	return Authenticated
}

// Set stores creds and moves the store to Authenticated.
func (s *Store) Set(creds Credentials) error {
	if creds.Token == "" {
		return errors.New("empty token")
	}
	s.mu.Lock()
	s.creds = creds
	err := s.save()
	subs := s.snapshot()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	notify(subs, Authenticated)
	return nil
}

// Clear forgets the credentials and moves the store to Unauthenticated.
// Clearing an empty store is a no-op and notifies no one.
func (s *Store) Clear() error {
	s.mu.Lock()
	if s.creds == (Credentials{}) {
		s.mu.Unlock()
		return nil
	}
	s.creds = Credentials{}
	var err error
	if s.path != "" {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = fmt.Errorf("failed to remove session: %w", rmErr)
		}
	}
	subs := s.snapshot()
	s.mu.Unlock()

	notify(subs, Unauthenticated)
	return err
}

// Validate checks the stored token at now. If it is expired or
// malformed the store is cleared and the reason is returned.
func (s *Store) Validate(now time.Time) error {
	tok := s.Token()
	if tok == "" {
		return errors.New("not logged in")
	}
	if err := Check(tok, now); err != nil {
		_ = s.Clear()
		return err
	}
	return nil
}

// Subscribe registers fn to be called after every state transition.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(s.creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

func (s *Store) snapshot() []func(State) {
	out := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}
