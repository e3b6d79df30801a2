package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ChurchPortal/models"
)

func setupDispatcher(t *testing.T, kind models.RecordKind, records ...models.Record) (*Dispatcher, *CollectionCache, *fakeRecordStore) {
	t.Setenv("SECRET", "test-secret")

	store := newFakeRecordStore(kind, records...)
	cache := NewCollectionCache(kind, store, authenticatedGate())
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh failed: %v", err)
	}
	return NewDispatcher(kind, cache, store), cache, store
}

func adminSession() models.Session {
	return models.Session{
		UID:   "admin-1",
		Email: "admin@ecwamai-gero.org",
		Phase: models.SessionAuthenticated,
	}
}

func TestChangeStatusApprovesMember(t *testing.T) {
	dispatcher, cache, store := setupDispatcher(t, models.MemberKind,
		memberRecord("1", "pending", "Mary", "Jones"),
		memberRecord("2", "approved", "John", "Okafor"),
	)

	member, err := dispatcher.ChangeStatus(context.Background(), adminSession(), "1", models.StatusApproved)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusApproved, member.Status)
	assert.Equal(t, "Mary", member.Field("firstname"))
	assert.Equal(t, 1, store.callCount("update"))

	counts := StatusCounts(models.MemberKind, cache.Snapshot().Records)
	assert.Equal(t, 0, counts[models.StatusPending])
	assert.Equal(t, 2, counts[models.StatusApproved])
}

func TestChangeStatusRejectsInvalidTransitionWithoutStoreCall(t *testing.T) {
	dispatcher, cache, store := setupDispatcher(t, models.MemberKind,
		memberRecord("1", "pending", "Mary", "Jones"),
	)
	before := cache.Snapshot()

	_, err := dispatcher.ChangeStatus(context.Background(), adminSession(), "1", "prayed")

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, store.callCount("update"))
	assert.Equal(t, before.Records, cache.Snapshot().Records)
}

func TestChangeStatusSameStatusIsNoOp(t *testing.T) {
	dispatcher, cache, store := setupDispatcher(t, models.MemberKind,
		memberRecord("1", "approved", "Mary", "Jones"),
	)
	before := cache.Snapshot()

	member, err := dispatcher.ChangeStatus(context.Background(), adminSession(), "1", models.StatusApproved)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusApproved, member.Status)
	assert.Equal(t, 0, store.callCount("update"))
	assert.Equal(t, before.Records, cache.Snapshot().Records)
}

func TestChangeStatusFailedUpdateLeavesCacheUntouched(t *testing.T) {
	dispatcher, cache, store := setupDispatcher(t, models.MemberKind,
		memberRecord("1", "pending", "Mary", "Jones"),
		memberRecord("2", "approved", "John", "Okafor"),
	)
	store.mu.Lock()
	store.updateErr = assert.AnError
	store.mu.Unlock()
	before := cache.Snapshot()

	_, err := dispatcher.ChangeStatus(context.Background(), adminSession(), "1", models.StatusApproved)

	assert.Error(t, err)
	assert.Equal(t, before.Records, cache.Snapshot().Records)
}

func TestChangeStatusUnknownRecord(t *testing.T) {
	dispatcher, _, store := setupDispatcher(t, models.MemberKind)

	_, err := dispatcher.ChangeStatus(context.Background(), adminSession(), "ghost", models.StatusApproved)

	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.Equal(t, 0, store.callCount("update"))
}

func TestChangeStatusIgnoresDuplicateGesture(t *testing.T) {
	dispatcher, cache, store := setupDispatcher(t, models.MemberKind,
		memberRecord("1", "pending", "Mary", "Jones"),
	)

	// first gesture still outstanding
	assert.True(t, cache.BeginMutation("1"))
	defer cache.EndMutation("1")

	_, err := dispatcher.ChangeStatus(context.Background(), adminSession(), "1", models.StatusApproved)

	assert.ErrorIs(t, err, ErrMutationInFlight)
	assert.Equal(t, 0, store.callCount("update"))
}

func TestTogglePrayedFlipsBothWays(t *testing.T) {
	dispatcher, _, _ := setupDispatcher(t, models.PrayerKind,
		prayerRecord("1", "pending", "Grace", "Health"),
	)

	prayer, err := dispatcher.TogglePrayed(context.Background(), adminSession(), "1")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPrayed, prayer.Status)

	prayer, err = dispatcher.TogglePrayed(context.Background(), adminSession(), "1")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, prayer.Status)
}

func TestDeleteRequiresConfirmationToken(t *testing.T) {
	dispatcher, cache, store := setupDispatcher(t, models.PrayerKind,
		prayerRecord("1", "pending", "Grace", "Health"),
	)
	before := cache.Snapshot()

	token, err := dispatcher.RequestDelete("1")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	// requesting alone deletes nothing
	assert.Equal(t, 0, store.callCount("delete"))
	assert.Equal(t, before.Records, cache.Snapshot().Records)

	// declining means never confirming; a forged token is also refused
	err = dispatcher.ConfirmDelete(context.Background(), adminSession(), "1", "not-a-token")
	assert.ErrorIs(t, err, ErrConfirmationNeeded)
	assert.Equal(t, 0, store.callCount("delete"))
	assert.Equal(t, before.Records, cache.Snapshot().Records)

	err = dispatcher.ConfirmDelete(context.Background(), adminSession(), "1", token)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.callCount("delete"))
	assert.Empty(t, cache.Snapshot().Records)
}

func TestConfirmationTokenIsBoundToTheRecord(t *testing.T) {
	dispatcher, cache, store := setupDispatcher(t, models.PrayerKind,
		prayerRecord("1", "pending", "Grace", "Health"),
		prayerRecord("2", "prayed", "Daniel", "Family"),
	)

	token, err := dispatcher.RequestDelete("1")
	assert.NoError(t, err)

	err = dispatcher.ConfirmDelete(context.Background(), adminSession(), "2", token)
	assert.ErrorIs(t, err, ErrConfirmationNeeded)
	assert.Equal(t, 0, store.callCount("delete"))
	assert.Len(t, cache.Snapshot().Records, 2)
}

func TestDeleteFailureKeepsRecord(t *testing.T) {
	dispatcher, cache, store := setupDispatcher(t, models.MemberKind,
		memberRecord("1", "pending", "Mary", "Jones"),
	)
	store.mu.Lock()
	store.deleteErr = assert.AnError
	store.mu.Unlock()

	token, err := dispatcher.RequestDelete("1")
	assert.NoError(t, err)

	err = dispatcher.ConfirmDelete(context.Background(), adminSession(), "1", token)
	assert.Error(t, err)
	assert.Len(t, cache.Snapshot().Records, 1)
}
