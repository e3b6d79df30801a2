package services

import (
	"sync"

	"github.com/ChurchPortal/models"
)

// SessionGate tracks one admin's session phase and notifies subscribers on
// every transition. It starts at pending so nothing downstream mistakes "not
// checked yet" for "signed out".
type SessionGate struct {
	mu      sync.RWMutex
	session models.Session
	subs    map[int]chan models.Session
	nextSub int
}

func NewSessionGate() *SessionGate {
	return &SessionGate{
		session: models.Session{Phase: models.SessionPending},
		subs:    make(map[int]chan models.Session),
	}
}

func (g *SessionGate) Current() models.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

// Subscribe returns a channel of session transitions and a cancel function.
// Channels are buffered and written non-blocking: a slow subscriber misses
// intermediate phases, never the latest delivery attempt.
func (g *SessionGate) Subscribe() (<-chan models.Session, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextSub
	g.nextSub++
	ch := make(chan models.Session, 1)
	g.subs[id] = ch

	cancel := func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if sub, ok := g.subs[id]; ok {
			delete(g.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (g *SessionGate) SetAuthenticated(uid, email string) {
	g.setSession(models.Session{UID: uid, Email: email, Phase: models.SessionAuthenticated})
}

// SetUnauthenticated transitions locally right away; logout never waits on
// remote acknowledgement.
func (g *SessionGate) SetUnauthenticated() {
	g.setSession(models.Session{Phase: models.SessionUnauthenticated})
}

func (g *SessionGate) setSession(s models.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == s {
		return
	}
	g.session = s

	for _, ch := range g.subs {
		select {
		case ch <- s:
		default:
			// buffer still holds an unread older phase: drop it so the
			// latest transition is the one delivered
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}
