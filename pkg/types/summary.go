package types

import "time"

// RunSummary is the externally consumable outcome of one guard run.
// Audit storage and verdict notification both take it as-is.
type RunSummary struct {
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	OK           bool      `json:"ok"`
	Changed      bool      `json:"changed"`
	CollectorOK  bool      `json:"collector_ok"`
	FilesChecked int       `json:"files_checked"`
	FilesShrunk  int       `json:"files_shrunk"`
	RecordsAdded int       `json:"records_added"`
}
