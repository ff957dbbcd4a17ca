package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/insightlens/insightlens/internal/model"
	appErr "github.com/insightlens/insightlens/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sqlx.DB
}

func NewDocumentRepo(db *sqlx.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":            doc.ID,
		"filename":      doc.Filename,
		"file_key":      doc.FileKey,
		"file_type":     doc.FileType,
		"file_size":     doc.FileSize,
		"status":        doc.Status,
		"domain":        doc.Domain,
		"section_count": doc.SectionCount,
		"fail_reason":   doc.FailReason,
		"ctime":         doc.Ctime,
		"mtime":         doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(sqlStr), args...)
	return err
}

func (r *DocumentRepo) GetByID(ctx context.Context, docID string) (*model.Document, error) {
	var doc model.Document
	err := r.db.GetContext(ctx, &doc, r.db.Rebind(
		"SELECT id, filename, file_key, file_type, file_size, status, domain, section_count, fail_reason, ctime, mtime FROM documents WHERE id = ?"), docID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) List(ctx context.Context, limit uint) ([]model.Document, error) {
	if limit == 0 {
		limit = 100
	}
	var docs []model.Document
	err := r.db.SelectContext(ctx, &docs, r.db.Rebind(
		"SELECT id, filename, file_key, file_type, file_size, status, domain, section_count, fail_reason, ctime, mtime FROM documents ORDER BY ctime DESC LIMIT ?"), limit)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateStatus moves a document through its processing lifecycle. Domain
// and section count are written together with the terminal processed
// status so readers never observe a half-finished document.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, docID, status string, update map[string]interface{}) error {
	if update == nil {
		update = map[string]interface{}{}
	}
	update["status"] = status
	where := map[string]interface{}{"id": docID}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, r.db.Rebind(sqlStr), args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo) Delete(ctx context.Context, docID string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM documents WHERE id = ?"), docID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// ListWithMissingEmbeddings finds processed documents that still have
// sections without an embedding, for the backfill job.
func (r *DocumentRepo) ListWithMissingEmbeddings(ctx context.Context, limit int) ([]model.Document, error) {
	const query = `
		SELECT DISTINCT d.id, d.filename, d.file_key, d.file_type, d.file_size, d.status, d.domain, d.section_count, d.fail_reason, d.ctime, d.mtime
		FROM documents d
		JOIN document_sections s ON s.document_id = d.id
		WHERE d.status = ? AND s.embedding IS NULL
		LIMIT ?
	`
	var docs []model.Document
	err := r.db.SelectContext(ctx, &docs, r.db.Rebind(query), model.DocumentStatusProcessed, limit)
	if err != nil {
		return nil, err
	}
	return docs, nil
}
