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

type ComparisonRepo struct {
	db *sqlx.DB
}

func NewComparisonRepo(db *sqlx.DB) *ComparisonRepo {
	return &ComparisonRepo{db: db}
}

func (r *ComparisonRepo) Create(ctx context.Context, cmp *model.DocumentComparison) error {
	entries := cmp.Entries
	if len(entries) == 0 {
		entries = []byte("[]")
	}
	data := map[string]interface{}{
		"id":           cmp.ID,
		"document_a":   cmp.DocumentA,
		"document_b":   cmp.DocumentB,
		"diff_summary": cmp.DiffSummary,
		"entries":      string(entries),
		"ctime":        cmp.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("document_comparisons", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(sqlStr), args...)
	return err
}

func (r *ComparisonRepo) GetByID(ctx context.Context, cmpID string) (*model.DocumentComparison, error) {
	var cmp model.DocumentComparison
	err := r.db.GetContext(ctx, &cmp, r.db.Rebind(
		"SELECT id, document_a, document_b, diff_summary, entries, ctime FROM document_comparisons WHERE id = ?"), cmpID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cmp, nil
}

// ListByDocument returns comparisons in which the document took part on
// either side, newest first.
func (r *ComparisonRepo) ListByDocument(ctx context.Context, docID string, limit uint) ([]model.DocumentComparison, error) {
	if limit == 0 {
		limit = 100
	}
	var cmps []model.DocumentComparison
	err := r.db.SelectContext(ctx, &cmps, r.db.Rebind(
		"SELECT id, document_a, document_b, diff_summary, entries, ctime FROM document_comparisons WHERE document_a = ? OR document_b = ? ORDER BY ctime DESC LIMIT ?"),
		docID, docID, limit)
	if err != nil {
		return nil, err
	}
	return cmps, nil
}
