package models

import "time"

// ModerationAudit is one row in the moderation_audit table: who did what to
// which record. Status changes carry both sides of the transition; deletes
// carry the status the record held when it was removed.
type ModerationAudit struct {
	Audit_ID        int       `json:"auditId" goqu:"skipinsert"`
	Admin_UID       string    `json:"adminUid"`
	Admin_Email     string    `json:"adminEmail"`
	Record_Kind     string    `json:"recordKind"`
	Record_ID       string    `json:"recordId"`
	Action          string    `json:"action"`
	Old_Status      string    `json:"oldStatus"`
	New_Status      string    `json:"newStatus"`
	Datetime_Create time.Time `json:"datetimeCreate" goqu:"skipinsert"`
}

const (
	AuditActionStatusChange = "status_change"
	AuditActionDelete       = "delete"
)
