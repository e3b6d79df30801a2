package controllers

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"

	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
)

// StubRecordStore is an in-memory RecordStore for handler tests. Error fields
// make the next matching call fail, which is how sync and mutation failures
// are simulated.
type StubRecordStore struct {
	mu      sync.Mutex
	records map[string][]models.Record

	ListErr   error
	UpdateErr error
	DeleteErr error
	CreateErr error
}

func NewStubRecordStore() *StubRecordStore {
	return &StubRecordStore{records: make(map[string][]models.Record)}
}

// Seed loads records into the stub's copy of a collection.
func (s *StubRecordStore) Seed(kind models.RecordKind, records ...models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[kind.Collection] = append(s.records[kind.Collection], records...)
}

func (s *StubRecordStore) List(ctx context.Context, kind models.RecordKind) ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]models.Record, len(s.records[kind.Collection]))
	copy(out, s.records[kind.Collection])
	return out, nil
}

func (s *StubRecordStore) Get(ctx context.Context, kind models.RecordKind, id string) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records[kind.Collection] {
		if rec.ID == id {
			return rec, nil
		}
	}
	return models.Record{}, services.ErrRecordNotFound
}

func (s *StubRecordStore) Update(ctx context.Context, kind models.RecordKind, id string, patch map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	for i, rec := range s.records[kind.Collection] {
		if rec.ID != id {
			continue
		}
		if status, ok := patch["status"].(string); ok {
			s.records[kind.Collection][i].Status = status
		}
		return nil
	}
	return services.ErrRecordNotFound
}

func (s *StubRecordStore) Delete(ctx context.Context, kind models.RecordKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	records := s.records[kind.Collection]
	for i, rec := range records {
		if rec.ID == id {
			s.records[kind.Collection] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *StubRecordStore) Create(ctx context.Context, kind models.RecordKind, doc map[string]interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return "", s.CreateErr
	}
	rec := models.Record{ID: "created-1", Status: kind.DefaultStatus, Fields: map[string]string{}}
	for k, v := range doc {
		if str, ok := v.(string); ok {
			rec.Fields[k] = str
		}
	}
	s.records[kind.Collection] = append(s.records[kind.Collection], rec)
	return rec.ID, nil
}

// SetupTestDB creates a mock database and sets it as the global DB for testing
func SetupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	goquDB := goqu.New("postgres", db)

	originalDB := initializers.DB
	initializers.DB = goquDB

	cleanup := func() {
		// Small delay to allow goroutines (like audit writes) to complete
		time.Sleep(10 * time.Millisecond)
		db.Close()
		initializers.DB = originalDB
	}

	return db, mock, cleanup
}

// SetupTestStore installs a fresh stub as the global record store and restores
// the original after the test.
func SetupTestStore(t *testing.T) *StubRecordStore {
	store := NewStubRecordStore()
	original := services.GetRecordStore()
	services.SetRecordStore(store)
	t.Cleanup(func() { services.SetRecordStore(original) })
	return store
}

// SetupTestConsole opens a console for the session's admin and closes it after
// the test. Call SetupTestStore first: the console captures the record store
// at creation.
func SetupTestConsole(t *testing.T, session models.Session) *services.Console {
	console := services.OpenConsole(session.UID, session.Email)
	t.Cleanup(func() { services.CloseConsole(session.UID) })
	return console
}

// SetupTestContext creates a test Gin context with a response recorder. The
// context carries a plain GET request so handlers can read queries and the
// request context; tests with JSON bodies replace c.Request.
func SetupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

// SetAdminSession sets the session and console values in the Gin context.
// This simulates what the CheckAuth middleware does.
func SetAdminSession(c *gin.Context, session models.Session, console *services.Console) {
	c.Set("session", session)
	c.Set("console", console)
}
