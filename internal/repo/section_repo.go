package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/insightlens/insightlens/internal/model"
)

type SectionRepo struct {
	db *sqlx.DB
}

func NewSectionRepo(db *sqlx.DB) *SectionRepo {
	return &SectionRepo{db: db}
}

func (r *SectionRepo) InsertBatch(ctx context.Context, sections []model.DocumentSection) error {
	if len(sections) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(sections))
	for _, sec := range sections {
		var embedding interface{}
		if len(sec.Embedding) > 0 {
			embedding = pgvector.NewVector(sec.Embedding)
		}
		rows = append(rows, map[string]interface{}{
			"id":          sec.ID,
			"document_id": sec.DocumentID,
			"order_index": sec.OrderIndex,
			"title":       sec.Title,
			"content":     sec.Text,
			"start_index": sec.StartIndex,
			"end_index":   sec.EndIndex,
			"embedding":   embedding,
			"ctime":       sec.Ctime,
		})
	}
	sqlStr, args, err := builder.BuildInsert("document_sections", rows)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(sqlStr), args...)
	return err
}

// ListByDocument returns a document's sections in order. The embedding is
// read back through a text cast and parsed, which keeps NULL handling
// trivial for sections that were stored without a vector.
func (r *SectionRepo) ListByDocument(ctx context.Context, docID string) ([]model.DocumentSection, error) {
	const query = `
		SELECT id, document_id, order_index, title, content, start_index, end_index, embedding::text, ctime
		FROM document_sections
		WHERE document_id = ?
		ORDER BY order_index ASC
	`
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sections []model.DocumentSection
	for rows.Next() {
		var sec model.DocumentSection
		var embedding sql.NullString
		if err := rows.Scan(&sec.ID, &sec.DocumentID, &sec.OrderIndex, &sec.Title, &sec.Text, &sec.StartIndex, &sec.EndIndex, &embedding, &sec.Ctime); err != nil {
			return nil, err
		}
		if embedding.Valid {
			vector, err := parseVector(embedding.String)
			if err != nil {
				return nil, fmt.Errorf("section %s: %w", sec.ID, err)
			}
			sec.Embedding = vector
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

func (r *SectionRepo) ListMissingEmbedding(ctx context.Context, docID string) ([]model.DocumentSection, error) {
	const query = `
		SELECT id, document_id, order_index, title, content, start_index, end_index, ctime
		FROM document_sections
		WHERE document_id = ? AND embedding IS NULL
		ORDER BY order_index ASC
	`
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sections []model.DocumentSection
	for rows.Next() {
		var sec model.DocumentSection
		if err := rows.Scan(&sec.ID, &sec.DocumentID, &sec.OrderIndex, &sec.Title, &sec.Text, &sec.StartIndex, &sec.EndIndex, &sec.Ctime); err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

func (r *SectionRepo) UpdateEmbedding(ctx context.Context, sectionID string, values []float32) error {
	if len(values) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		"UPDATE document_sections SET embedding = ? WHERE id = ?"), pgvector.NewVector(values), sectionID)
	return err
}

// parseVector turns the pgvector text form "[0.1,0.2,...]" back into a
// float slice.
func parseVector(raw string) ([]float32, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < 2 || !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, fmt.Errorf("malformed vector text: %q", raw)
	}
	body := trimmed[1 : len(trimmed)-1]
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}
	parts := strings.Split(body, ",")
	vector := make([]float32, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("malformed vector element %q: %w", part, err)
		}
		vector = append(vector, float32(value))
	}
	return vector, nil
}
