package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/ChurchPortal/models"
)

var (
	ErrMutationInFlight   = errors.New("a change for this record is still in progress")
	ErrConfirmationNeeded = errors.New("invalid or expired delete confirmation")
)

// DeleteConfirmWindow is how long a delete confirmation token stays valid.
const DeleteConfirmWindow = 30 * time.Second

// Dispatcher turns operator gestures into remote mutations plus the matching
// local cache delta. The cache changes only after the store confirms; a
// failed call leaves the mirror exactly as it was and the operator
// re-triggers the gesture, there is no automatic retry.
type Dispatcher struct {
	kind  models.RecordKind
	cache *CollectionCache
	store RecordStore
}

func NewDispatcher(kind models.RecordKind, cache *CollectionCache, store RecordStore) *Dispatcher {
	return &Dispatcher{kind: kind, cache: cache, store: store}
}

// ChangeStatus validates the transition first; an invalid request costs no
// network call.
func (d *Dispatcher) ChangeStatus(ctx context.Context, actor models.Session, id, requested string) (models.Record, error) {
	current, ok := d.cache.Lookup(id)
	if !ok {
		return models.Record{}, ErrRecordNotFound
	}

	next, err := Transition(d.kind, current.Status, requested)
	if err != nil {
		return models.Record{}, err
	}
	if next == current.Status {
		// already in the requested state; nothing to write
		return current, nil
	}

	if !d.cache.BeginMutation(id) {
		return models.Record{}, ErrMutationInFlight
	}
	defer d.cache.EndMutation(id)

	if d.store == nil {
		return models.Record{}, ErrStoreUnavailable
	}
	if err := d.store.Update(ctx, d.kind, id, map[string]interface{}{"status": next}); err != nil {
		return models.Record{}, err
	}

	d.cache.ApplyMutation(id, models.RecordPatch{Status: &next})
	d.recordAudit(actor, id, models.AuditActionStatusChange, current.Status, next)

	if d.kind.Name == models.MemberKind.Name && next == models.StatusApproved {
		notifyMemberApproved(current)
	}

	rec, _ := d.cache.Lookup(id)
	return rec, nil
}

// TogglePrayed flips a prayer request between pending and prayed.
func (d *Dispatcher) TogglePrayed(ctx context.Context, actor models.Session, id string) (models.Record, error) {
	current, ok := d.cache.Lookup(id)
	if !ok {
		return models.Record{}, ErrRecordNotFound
	}
	return d.ChangeStatus(ctx, actor, id, ToggledStatus(current.Status))
}

// RequestDelete is the first half of the destructive flow: it issues a
// short-lived token bound to this record. Nothing touches the store until
// ConfirmDelete presents the token back; declining simply lets it expire.
func (d *Dispatcher) RequestDelete(id string) (string, error) {
	if _, ok := d.cache.Lookup(id); !ok {
		return "", ErrRecordNotFound
	}

	generateToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"kind": d.kind.Name,
		"rec":  id,
		"exp":  time.Now().Add(DeleteConfirmWindow).Unix(),
	})

	token, err := generateToken.SignedString([]byte(os.Getenv("SECRET")))
	if err != nil {
		return "", fmt.Errorf("failed to generate confirmation token: %v", err)
	}
	return token, nil
}

// ConfirmDelete completes the destructive flow once the operator has
// acknowledged it.
func (d *Dispatcher) ConfirmDelete(ctx context.Context, actor models.Session, id, confirmToken string) error {
	if err := d.checkConfirmation(id, confirmToken); err != nil {
		return err
	}

	prev, ok := d.cache.Lookup(id)
	if !ok {
		return ErrRecordNotFound
	}

	if !d.cache.BeginMutation(id) {
		return ErrMutationInFlight
	}
	defer d.cache.EndMutation(id)

	if d.store == nil {
		return ErrStoreUnavailable
	}
	if err := d.store.Delete(ctx, d.kind, id); err != nil {
		return err
	}

	d.cache.ApplyRemoval(id)
	d.recordAudit(actor, id, models.AuditActionDelete, prev.Status, "")
	return nil
}

func (d *Dispatcher) checkConfirmation(id, confirmToken string) error {
	token, err := jwt.Parse(confirmToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("SECRET")), nil
	})
	if err != nil || !token.Valid {
		return ErrConfirmationNeeded
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["kind"] != d.kind.Name || claims["rec"] != id {
		return ErrConfirmationNeeded
	}
	return nil
}

// recordAudit is best effort; a failed audit write never rolls back a
// moderation action the store has already confirmed.
func (d *Dispatcher) recordAudit(actor models.Session, id, action, oldStatus, newStatus string) {
	entry := models.ModerationAudit{
		Admin_UID:   actor.UID,
		Admin_Email: actor.Email,
		Record_Kind: d.kind.Name,
		Record_ID:   id,
		Action:      action,
		Old_Status:  oldStatus,
		New_Status:  newStatus,
	}
	if err := RecordModerationAction(entry); err != nil {
		log.Printf("Failed to audit %s on %s %s: %v", action, d.kind.Name, id, err)
	}
}

func notifyMemberApproved(rec models.Record) {
	emailService := GetEmailService()
	if emailService == nil {
		return
	}
	email := rec.Field("email")
	if email == "" {
		return
	}
	go func() {
		if err := emailService.SendMemberApprovedEmail(email, rec.Field("firstname")); err != nil {
			log.Printf("Failed to send approval email to %s: %v", email, err)
		}
	}()
}
