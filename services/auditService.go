package services

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/models"
)

// RecordModerationAction appends one entry to the moderation_audit table.
// With no database configured the action simply goes unrecorded.
func RecordModerationAction(entry models.ModerationAudit) error {
	if initializers.DB == nil {
		return nil
	}

	insert := initializers.DB.Insert("moderation_audit").Rows(entry).Executor()
	if _, err := insert.Exec(); err != nil {
		return fmt.Errorf("failed to record moderation action: %v", err)
	}
	return nil
}

// GetRecentModerationActions returns the newest audit entries first,
// optionally narrowed to one record kind.
func GetRecentModerationActions(kind string, limit uint) ([]models.ModerationAudit, error) {
	if initializers.DB == nil {
		return []models.ModerationAudit{}, nil
	}

	query := initializers.DB.From("moderation_audit").
		Select(
			"audit_id",
			"admin_uid",
			"admin_email",
			"record_kind",
			"record_id",
			"action",
			"old_status",
			"new_status",
			"datetime_create",
		).
		Order(goqu.C("datetime_create").Desc()).
		Limit(limit)
	if kind != "" {
		query = query.Where(goqu.C("record_kind").Eq(kind))
	}

	var entries []models.ModerationAudit
	err := query.ScanStructs(&entries)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch moderation audit: %v", err)
	}
	if entries == nil {
		entries = []models.ModerationAudit{}
	}
	return entries, nil
}
