package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/csheth/expertdesk/internal/session"
)

const (
	sessionCookie = "expertdesk_session"
	// sessionIdleTimeout drops form state nobody touched for this long.
	sessionIdleTimeout = 30 * time.Minute
)

// browserSession is one visitor's form state. mu is held for the whole of a
// submission so a browser never runs two calls at once.
type browserSession struct {
	id       string
	mu       sync.Mutex
	state    *session.State
	lastSeen time.Time
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*browserSession
	idle     time.Duration
	now      func() time.Time
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*browserSession),
		idle:     sessionIdleTimeout,
		now:      time.Now,
	}
}

// lookup returns the live session named by id, or nil.
func (r *sessionRegistry) lookup(id string) *browserSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || id == "" {
		return nil
	}
	now := r.now()
	if now.Sub(s.lastSeen) > r.idle {
		delete(r.sessions, id)
		return nil
	}
	s.lastSeen = now
	return s
}

// get returns the session named by id, creating a fresh one when id is empty,
// unknown or expired. Creating a session also sweeps idle ones.
func (r *sessionRegistry) get(id string) (*browserSession, bool) {
	if s := r.lookup(id); s != nil {
		return s, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.pruneLocked(now)
	s := &browserSession{id: uuid.NewString(), state: session.New(), lastSeen: now}
	r.sessions[s.id] = s
	return s, true
}

func (r *sessionRegistry) pruneLocked(now time.Time) {
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.idle {
			delete(r.sessions, id)
		}
	}
}

func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// existing resolves the caller's session without creating one.
func (r *sessionRegistry) existing(c *gin.Context) *browserSession {
	id, _ := c.Cookie(sessionCookie)
	return r.lookup(id)
}

// sessionFor resolves the caller's session and sets the cookie when a new one
// was minted.
func (r *sessionRegistry) sessionFor(c *gin.Context) *browserSession {
	id, _ := c.Cookie(sessionCookie)
	s, created := r.get(id)
	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, s.id, 0, "/", "", false, true)
	}
	return s
}
