package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/canvasflow/pkg/canvas"
	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
	"github.com/matzehuels/canvasflow/pkg/layout"
)

// session is one client's canvas. mu serializes every request that touches
// the canvas, since a Canvas is not safe for concurrent use.
type session struct {
	id      string
	created time.Time

	mu       sync.Mutex
	canvas   *canvas.Canvas
	lastUsed time.Time
}

// sessionStore holds live sessions and evicts idle ones.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session

	max    int
	ttl    time.Duration
	cfg    layout.Config
	logger *log.Logger
	now    func() time.Time
}

func newSessionStore(max int, ttl time.Duration, cfg layout.Config, logger *log.Logger) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		max:      max,
		ttl:      ttl,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// create starts a session with an empty canvas. Idle sessions are evicted
// first; if the store is still full the call fails with SESSION_LIMIT.
func (s *sessionStore) create() (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()
	if s.max > 0 && len(s.sessions) >= s.max {
		return nil, cferrors.New(cferrors.ErrCodeSessionLimit, "session limit of %d reached", s.max)
	}

	now := s.now()
	sess := &session{
		id:       uuid.NewString(),
		created:  now,
		lastUsed: now,
		canvas:   canvas.New(canvas.WithConfig(s.cfg), canvas.WithLogger(s.logger)),
	}
	s.sessions[sess.id] = sess
	return sess, nil
}

// get returns a live session and marks it used.
func (s *sessionStore) get(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expiredLocked(sess) {
		if ok {
			delete(s.sessions, id)
		}
		return nil, cferrors.New(cferrors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	sess.lastUsed = s.now()
	return sess, nil
}

// remove deletes a session and reports whether it existed.
func (s *sessionStore) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// evict drops idle sessions and returns how many were dropped.
func (s *sessionStore) evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked()
}

func (s *sessionStore) evictLocked() int {
	n := 0
	for id, sess := range s.sessions {
		if s.expiredLocked(sess) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.logger.Debug("evicted idle sessions", "count", n, "live", len(s.sessions))
	}
	return n
}

func (s *sessionStore) expiredLocked(sess *session) bool {
	return s.ttl > 0 && s.now().Sub(sess.lastUsed) > s.ttl
}
