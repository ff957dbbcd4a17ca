package model

// DocumentSection is one ordered chunk of a document's extracted text.
// OrderIndex is contiguous and 0-based within a document; StartIndex and
// EndIndex are character offsets into the extracted text. Title is empty
// for content that precedes the first detected heading. Embedding is nil
// when embedding generation failed or has not run yet.
type DocumentSection struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	OrderIndex int       `json:"order_index" db:"order_index"`
	Title      string    `json:"title,omitempty" db:"title"`
	Text       string    `json:"text" db:"content"`
	StartIndex int       `json:"start_index" db:"start_index"`
	EndIndex   int       `json:"end_index" db:"end_index"`
	Embedding  []float32 `json:"-" db:"-"`
	Ctime      int64     `json:"ctime" db:"ctime"`
}
