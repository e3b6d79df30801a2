package services

import (
	"context"
	"sync"

	"github.com/ChurchPortal/models"
)

// fakeRecordStore is an in-memory RecordStore for exercising the cache and
// dispatcher without Firestore.
type fakeRecordStore struct {
	mu      sync.Mutex
	records map[string][]models.Record

	listErr   error
	updateErr error
	deleteErr error

	// when set, List blocks until the channel is closed
	listGate chan struct{}

	calls []string
}

func newFakeRecordStore(kind models.RecordKind, records ...models.Record) *fakeRecordStore {
	return &fakeRecordStore{
		records: map[string][]models.Record{kind.Collection: records},
	}
}

func (f *fakeRecordStore) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, call := range f.calls {
		if call == name {
			n++
		}
	}
	return n
}

func (f *fakeRecordStore) List(ctx context.Context, kind models.RecordKind) ([]models.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "list")
	gate := f.listGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Record, len(f.records[kind.Collection]))
	copy(out, f.records[kind.Collection])
	return out, nil
}

func (f *fakeRecordStore) Get(ctx context.Context, kind models.RecordKind, id string) (models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "get")
	for _, rec := range f.records[kind.Collection] {
		if rec.ID == id {
			return rec, nil
		}
	}
	return models.Record{}, ErrRecordNotFound
}

func (f *fakeRecordStore) Update(ctx context.Context, kind models.RecordKind, id string, patch map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "update")
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, rec := range f.records[kind.Collection] {
		if rec.ID != id {
			continue
		}
		if status, ok := patch["status"].(string); ok {
			f.records[kind.Collection][i].Status = status
		}
		return nil
	}
	return ErrRecordNotFound
}

func (f *fakeRecordStore) Delete(ctx context.Context, kind models.RecordKind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	records := f.records[kind.Collection]
	for i, rec := range records {
		if rec.ID == id {
			f.records[kind.Collection] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRecordStore) Create(ctx context.Context, kind models.RecordKind, doc map[string]interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create")
	rec := models.Record{ID: "created-1", Status: kind.DefaultStatus, Fields: map[string]string{}}
	for k, v := range doc {
		if s, ok := v.(string); ok {
			rec.Fields[k] = s
		}
	}
	f.records[kind.Collection] = append(f.records[kind.Collection], rec)
	return rec.ID, nil
}

// authenticatedGate is a gate already past its initial check.
func authenticatedGate() *SessionGate {
	gate := NewSessionGate()
	gate.SetAuthenticated("admin-1", "admin@ecwamai-gero.org")
	return gate
}

func memberRecord(id, status, firstname, surname string) models.Record {
	return models.Record{
		ID:     id,
		Status: status,
		Fields: map[string]string{
			"firstname": firstname,
			"surname":   surname,
			"email":     firstname + "@example.com",
		},
	}
}

func prayerRecord(id, status, fullName, subject string) models.Record {
	return models.Record{
		ID:     id,
		Status: status,
		Fields: map[string]string{
			"fullName": fullName,
			"subject":  subject,
			"message":  "Please pray with me.",
		},
	}
}
