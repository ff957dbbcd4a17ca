package model

const (
	DocumentStatusUploaded   = "uploaded"
	DocumentStatusProcessing = "processing"
	DocumentStatusProcessed  = "processed"
	DocumentStatusFailed     = "failed"
)

type Document struct {
	ID           string `json:"id" db:"id"`
	Filename     string `json:"filename" db:"filename"`
	FileKey      string `json:"file_key" db:"file_key"`
	FileType     string `json:"file_type" db:"file_type"`
	FileSize     int64  `json:"file_size" db:"file_size"`
	Status       string `json:"status" db:"status"`
	Domain       string `json:"domain" db:"domain"`
	SectionCount int    `json:"section_count" db:"section_count"`
	FailReason   string `json:"fail_reason,omitempty" db:"fail_reason"`
	Ctime        int64  `json:"ctime" db:"ctime"`
	Mtime        int64  `json:"mtime" db:"mtime"`
}
