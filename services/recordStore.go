package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/models"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrStoreTimeout     = errors.New("store call timed out")
	ErrStoreUnavailable = errors.New("record store not available")
)

// SubmissionTimeout bounds public submission writes. A deadline hit maps to
// ErrStoreTimeout so the visitor is told to check connectivity rather than
// fix their input.
const SubmissionTimeout = 10 * time.Second

// RecordStore is the contract over one remote document collection per kind.
// Calls carry no implicit retry; callers own retry policy.
type RecordStore interface {
	List(ctx context.Context, kind models.RecordKind) ([]models.Record, error)
	Get(ctx context.Context, kind models.RecordKind, id string) (models.Record, error)
	Update(ctx context.Context, kind models.RecordKind, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, kind models.RecordKind, id string) error
	Create(ctx context.Context, kind models.RecordKind, doc map[string]interface{}) (string, error)
}

var recordStore RecordStore

func InitRecordStore() {
	if initializers.Firestore == nil {
		log.Println("WARNING: Firestore client not available. Record store will not be initialized.")
		return
	}
	recordStore = &firestoreStore{client: initializers.Firestore}
	log.Println("Record store initialized with Firestore")
}

func GetRecordStore() RecordStore {
	return recordStore
}

// SetRecordStore swaps the store implementation; tests install fakes here.
func SetRecordStore(s RecordStore) {
	recordStore = s
}

type firestoreStore struct {
	client *firestore.Client
}

func (s *firestoreStore) List(ctx context.Context, kind models.RecordKind) ([]models.Record, error) {
	iter := s.client.Collection(kind.Collection).
		OrderBy("submittedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	records := []models.Record{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", kind.Collection, err)
		}
		records = append(records, decodeRecord(kind, doc.Ref.ID, doc.Data()))
	}
	return records, nil
}

func (s *firestoreStore) Get(ctx context.Context, kind models.RecordKind, id string) (models.Record, error) {
	doc, err := s.client.Collection(kind.Collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.Record{}, ErrRecordNotFound
		}
		return models.Record{}, fmt.Errorf("failed to get %s %s: %w", kind.Name, id, err)
	}
	return decodeRecord(kind, doc.Ref.ID, doc.Data()), nil
}

func (s *firestoreStore) Update(ctx context.Context, kind models.RecordKind, id string, patch map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(patch))
	for field, value := range patch {
		updates = append(updates, firestore.Update{Path: field, Value: value})
	}

	_, err := s.client.Collection(kind.Collection).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrRecordNotFound
		}
		return fmt.Errorf("failed to update %s %s: %w", kind.Name, id, err)
	}
	return nil
}

func (s *firestoreStore) Delete(ctx context.Context, kind models.RecordKind, id string) error {
	_, err := s.client.Collection(kind.Collection).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind.Name, id, err)
	}
	return nil
}

func (s *firestoreStore) Create(ctx context.Context, kind models.RecordKind, doc map[string]interface{}) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, SubmissionTimeout)
	defer cancel()

	doc["status"] = kind.DefaultStatus
	doc["submittedAt"] = firestore.ServerTimestamp

	ref, _, err := s.client.Collection(kind.Collection).Add(ctx, doc)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || status.Code(err) == codes.DeadlineExceeded {
			return "", ErrStoreTimeout
		}
		return "", fmt.Errorf("failed to create %s: %w", kind.Name, err)
	}
	return ref.ID, nil
}

// decodeRecord tolerates the shapes the collections have accumulated over
// time: records created before the status field existed, and timestamps
// stored variously as Firestore timestamps, RFC3339 strings, or raw epoch
// numbers. A malformed record is defaulted, never dropped.
func decodeRecord(kind models.RecordKind, id string, data map[string]interface{}) models.Record {
	rec := models.Record{
		ID:     id,
		Status: kind.DefaultStatus,
		Fields: map[string]string{},
	}
	for key, value := range data {
		switch key {
		case "status":
			if s, ok := value.(string); ok && kind.ValidStatus(s) {
				rec.Status = s
			}
		case "submittedAt":
			rec.SubmittedAt = normalizeTime(value)
		default:
			rec.Fields[key] = stringifyField(value)
		}
	}
	return rec
}

// normalizeTime is the single place timestamp shapes are resolved; everything
// past the store client sees *time.Time or nil.
func normalizeTime(value interface{}) *time.Time {
	switch v := value.(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return &t
		}
	case int64:
		return epochTime(v)
	case float64:
		return epochTime(int64(v))
	}
	return nil
}

// epochTime guesses seconds versus milliseconds by magnitude.
func epochTime(v int64) *time.Time {
	if v <= 0 {
		return nil
	}
	var t time.Time
	if v > 1e12 {
		t = time.UnixMilli(v)
	} else {
		t = time.Unix(v, 0)
	}
	return &t
}

func stringifyField(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
