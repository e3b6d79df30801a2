package services

import (
	"strings"

	"github.com/ChurchPortal/models"
)

// Project derives the subset the operator currently sees from a cache
// snapshot. Pure: the input slice is never reordered or mutated, so the
// store's descending submission order carries through unchanged. Search is a
// case-insensitive substring match over the kind's composite search key; the
// filter is an exact status match, empty meaning all.
func Project(kind models.RecordKind, records []models.Record, search, statusFilter string) []models.Record {
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if statusFilter != "" && rec.Status != statusFilter {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(kind.SearchKey(rec)), needle) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// StatusCounts tallies the whole mirror per status, for the member tabs and
// the pending-prayers badge. Counts always cover every valid status so a tab
// with zero records still renders.
func StatusCounts(kind models.RecordKind, records []models.Record) map[string]int {
	counts := make(map[string]int, len(kind.ValidStatuses))
	for _, status := range kind.ValidStatuses {
		counts[status] = 0
	}
	for _, rec := range records {
		counts[rec.Status]++
	}
	return counts
}
