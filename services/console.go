package services

import (
	"log"
	"sync"

	"github.com/ChurchPortal/models"
)

// Console is one admin's moderation workspace: a session gate plus a cache
// and dispatcher per record kind. The caches exist only while the gate is
// authenticated; when it drops to unauthenticated they are torn down and any
// in-flight refresh result is discarded.
type Console struct {
	Gate *SessionGate

	caches      map[string]*CollectionCache
	dispatchers map[string]*Dispatcher
	unsubscribe func()
}

func newConsole(uid, email string) *Console {
	gate := NewSessionGate()
	store := GetRecordStore()

	console := &Console{
		Gate:        gate,
		caches:      make(map[string]*CollectionCache),
		dispatchers: make(map[string]*Dispatcher),
	}
	for _, kind := range []models.RecordKind{models.MemberKind, models.PrayerKind} {
		cache := NewCollectionCache(kind, store, gate)
		console.caches[kind.Name] = cache
		console.dispatchers[kind.Name] = NewDispatcher(kind, cache, store)
	}

	updates, cancel := gate.Subscribe()
	console.unsubscribe = cancel
	go func() {
		for session := range updates {
			if session.Phase == models.SessionUnauthenticated {
				for _, cache := range console.caches {
					cache.Close()
				}
				return
			}
		}
	}()

	gate.SetAuthenticated(uid, email)
	return console
}

func (c *Console) Cache(kind models.RecordKind) *CollectionCache {
	return c.caches[kind.Name]
}

func (c *Console) Dispatcher(kind models.RecordKind) *Dispatcher {
	return c.dispatchers[kind.Name]
}

var (
	consoles  = make(map[string]*Console)
	consoleMu sync.Mutex
)

// OpenConsole returns the admin's console, creating it on first login.
func OpenConsole(uid, email string) *Console {
	consoleMu.Lock()
	defer consoleMu.Unlock()

	if console, ok := consoles[uid]; ok {
		return console
	}
	console := newConsole(uid, email)
	consoles[uid] = console
	log.Printf("Opened moderation console for %s", email)
	return console
}

// GetConsole returns nil when the admin has no open console (never logged in,
// or already logged out).
func GetConsole(uid string) *Console {
	consoleMu.Lock()
	defer consoleMu.Unlock()
	return consoles[uid]
}

// CloseConsole transitions the gate to unauthenticated, which tears the
// caches down, then forgets the console. Local-first: callers revoke remote
// credentials afterwards and on their own time.
func CloseConsole(uid string) {
	consoleMu.Lock()
	console, ok := consoles[uid]
	if ok {
		delete(consoles, uid)
	}
	consoleMu.Unlock()

	if !ok {
		return
	}
	console.Gate.SetUnauthenticated()
	console.unsubscribe()
}
