package model

import "encoding/json"

const (
	CompareJobStatusQueued     = "queued"
	CompareJobStatusProcessing = "processing"
	CompareJobStatusDone       = "done"
	CompareJobStatusFailed     = "failed"
)

type DocumentComparison struct {
	ID          string          `json:"id" db:"id"`
	DocumentA   string          `json:"document_a" db:"document_a"`
	DocumentB   string          `json:"document_b" db:"document_b"`
	DiffSummary string          `json:"diff_summary" db:"diff_summary"`
	Entries     json.RawMessage `json:"entries" db:"entries"`
	Ctime       int64           `json:"ctime" db:"ctime"`
}

type CompareJob struct {
	ID           string `json:"id" db:"id"`
	DocumentA    string `json:"document_a" db:"document_a"`
	DocumentB    string `json:"document_b" db:"document_b"`
	Status       string `json:"status" db:"status"`
	ComparisonID string `json:"comparison_id,omitempty" db:"comparison_id"`
	FailReason   string `json:"fail_reason,omitempty" db:"fail_reason"`
	Ctime        int64  `json:"ctime" db:"ctime"`
	Mtime        int64  `json:"mtime" db:"mtime"`
}
