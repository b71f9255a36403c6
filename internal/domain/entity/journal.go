package entity

import "time"

// JournalEntry audit entry for an appended record.
type JournalEntry struct {
	ID        string            `json:"id"`
	Actor     string            `json:"actor"`
	Values    map[string]string `json:"values"`
	RowCount  int               `json:"row_count"`
	CreatedAt time.Time         `json:"created_at"`
}
