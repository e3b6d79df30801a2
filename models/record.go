package models

import (
	"strings"
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusPrayed   = "prayed"
)

// Record is one moderated document from a store collection. The payload
// fields vary by kind and stay free text, the shape the store returns them in.
// SubmittedAt is nil when the server has not confirmed the write yet; those
// records sort after everything else.
type Record struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	SubmittedAt *time.Time        `json:"submittedAt"`
	Fields      map[string]string `json:"fields"`
}

func (r Record) Field(name string) string {
	return r.Fields[name]
}

// RecordPatch is a confirmed remote change folded back into a local mirror.
// Nil/absent parts leave the matching record fields untouched.
type RecordPatch struct {
	Status *string
	Fields map[string]string
}

// RecordKind describes one moderated collection: which statuses exist, what a
// fetched record defaults to when the status field is missing, and what text
// the admin search box matches against.
type RecordKind struct {
	Name          string
	Collection    string
	ValidStatuses []string
	DefaultStatus string
	SearchKey     func(Record) string
}

func (k RecordKind) ValidStatus(status string) bool {
	for _, s := range k.ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

var MemberKind = RecordKind{
	Name:          "member",
	Collection:    "members",
	ValidStatuses: []string{StatusPending, StatusApproved, StatusRejected},
	DefaultStatus: StatusPending,
	SearchKey: func(r Record) string {
		return r.Field("firstname") + " " + r.Field("surname") + " " + r.Field("email")
	},
}

var PrayerKind = RecordKind{
	Name:          "prayer",
	Collection:    "prayers",
	ValidStatuses: []string{StatusPending, StatusPrayed},
	DefaultStatus: StatusPending,
	SearchKey: func(r Record) string {
		return r.Field("fullName") + " " + r.Field("subject")
	},
}

// KindByName resolves a kind from its route segment.
func KindByName(name string) (RecordKind, bool) {
	switch strings.ToLower(name) {
	case MemberKind.Name:
		return MemberKind, true
	case PrayerKind.Name:
		return PrayerKind, true
	}
	return RecordKind{}, false
}
