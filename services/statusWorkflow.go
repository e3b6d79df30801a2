package services

import (
	"errors"
	"fmt"

	"github.com/ChurchPortal/models"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Transition validates a requested status change for a record kind. Every
// move among a kind's defined statuses is legal (moderation decisions are
// reversible), including re-requesting the status a record already holds;
// the check rejects statuses outside the set before any store call happens.
func Transition(kind models.RecordKind, current, requested string) (string, error) {
	if !kind.ValidStatus(requested) {
		return "", fmt.Errorf("%w: %q is not a %s status", ErrInvalidTransition, requested, kind.Name)
	}
	return requested, nil
}

// ToggledStatus is the prayer-card button behaviour: pending and prayed flip
// back and forth.
func ToggledStatus(current string) string {
	if current == models.StatusPrayed {
		return models.StatusPending
	}
	return models.StatusPrayed
}

// StatusAction is one affordance the operator sees on a record: the status a
// button would move it to and the button's label.
type StatusAction struct {
	Status string `json:"status"`
	Label  string `json:"label"`
}

var actionLabels = map[string]map[string]string{
	models.MemberKind.Name: {
		models.StatusPending:  "Reset to Pending",
		models.StatusApproved: "Approve",
		models.StatusRejected: "Reject",
	},
	models.PrayerKind.Name: {
		models.StatusPending: "Reopen Request",
		models.StatusPrayed:  "Mark as Prayed",
	},
}

var statusLabels = map[string]map[string]string{
	models.MemberKind.Name: {
		models.StatusPending:  "Pending Review",
		models.StatusApproved: "Approved",
		models.StatusRejected: "Rejected",
	},
	models.PrayerKind.Name: {
		models.StatusPending: "Pending",
		models.StatusPrayed:  "Prayed For",
	},
}

// StatusLabel is the display name for a record's current status.
func StatusLabel(kind models.RecordKind, status string) string {
	if label, ok := statusLabels[kind.Name][status]; ok {
		return label
	}
	return statusLabels[kind.Name][kind.DefaultStatus]
}

// Actions lists the moves available from a record's current status; the
// button for the state a record is already in is hidden. Rendering and the
// dispatcher both draw on this table so status strings live in one place.
func Actions(kind models.RecordKind, current string) []StatusAction {
	if !kind.ValidStatus(current) {
		current = kind.DefaultStatus
	}
	actions := make([]StatusAction, 0, len(kind.ValidStatuses)-1)
	for _, status := range kind.ValidStatuses {
		if status == current {
			continue
		}
		actions = append(actions, StatusAction{Status: status, Label: actionLabels[kind.Name][status]})
	}
	return actions
}
