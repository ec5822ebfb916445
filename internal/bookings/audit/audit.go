// Package audit maintains the append-only history carried by every booking.
package audit

import (
	"time"

	"bookingdesk/pkg/model"
)

// Append returns a new history with one entry added at the end. The input
// slice is never modified, so a snapshot that shares it stays intact.
//
// An empty actor is recorded as the merchant. Timestamps never go backwards:
// if at is earlier than the last recorded entry, the last timestamp is reused.
func Append(history []model.HistoryEntry, action, actor, notes string, at time.Time) []model.HistoryEntry {
	if actor == "" {
		actor = model.ActorMerchant
	}
	if n := len(history); n > 0 && at.Before(history[n-1].Timestamp) {
		at = history[n-1].Timestamp
	}

	next := make([]model.HistoryEntry, len(history), len(history)+1)
	copy(next, history)
	return append(next, model.HistoryEntry{
		Action:    action,
		Timestamp: at,
		Actor:     actor,
		Notes:     notes,
	})
}

// IsMonotonic reports whether timestamps in history never decrease.
func IsMonotonic(history []model.HistoryEntry) bool {
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			return false
		}
	}
	return true
}
