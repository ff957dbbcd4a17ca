package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/insightlens/insightlens/internal/model"
	appErr "github.com/insightlens/insightlens/internal/pkg/errors"
)

type CompareJobRepo struct {
	db *sqlx.DB
}

func NewCompareJobRepo(db *sqlx.DB) *CompareJobRepo {
	return &CompareJobRepo{db: db}
}

func (r *CompareJobRepo) Create(ctx context.Context, job *model.CompareJob) error {
	data := map[string]interface{}{
		"id":            job.ID,
		"document_a":    job.DocumentA,
		"document_b":    job.DocumentB,
		"status":        job.Status,
		"comparison_id": job.ComparisonID,
		"fail_reason":   job.FailReason,
		"ctime":         job.Ctime,
		"mtime":         job.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("compare_jobs", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(sqlStr), args...)
	return err
}

func (r *CompareJobRepo) GetByID(ctx context.Context, jobID string) (*model.CompareJob, error) {
	var job model.CompareJob
	err := r.db.GetContext(ctx, &job, r.db.Rebind(
		"SELECT id, document_a, document_b, status, comparison_id, fail_reason, ctime, mtime FROM compare_jobs WHERE id = ?"), jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *CompareJobRepo) UpdateStatus(ctx context.Context, jobID, status string, update map[string]interface{}) error {
	if update == nil {
		update = map[string]interface{}{}
	}
	update["status"] = status
	update["mtime"] = time.Now().UnixMilli()
	where := map[string]interface{}{"id": jobID}
	sqlStr, args, err := builder.BuildUpdate("compare_jobs", where, update)
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

// MarkStale fails jobs stuck in a non-terminal state, typically after a
// crash left them orphaned. Returns the number of jobs failed.
func (r *CompareJobRepo) MarkStale(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(
		"UPDATE compare_jobs SET status = ?, fail_reason = ?, mtime = ? WHERE status IN (?, ?) AND mtime < ?"),
		model.CompareJobStatusFailed, "job abandoned: no progress past deadline", time.Now().UnixMilli(),
		model.CompareJobStatusQueued, model.CompareJobStatusProcessing, olderThan.UnixMilli())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// PurgeFinished removes terminal jobs older than the retention window.
func (r *CompareJobRepo) PurgeFinished(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(
		"DELETE FROM compare_jobs WHERE status IN (?, ?) AND mtime < ?"),
		model.CompareJobStatusDone, model.CompareJobStatusFailed, olderThan.UnixMilli())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
