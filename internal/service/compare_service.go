package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/insightlens/insightlens/internal/compare"
	"github.com/insightlens/insightlens/internal/model"
	appErr "github.com/insightlens/insightlens/internal/pkg/errors"
	"github.com/insightlens/insightlens/internal/repo"
	"github.com/insightlens/insightlens/internal/task"
)

type CompareService struct {
	docRepo     *repo.DocumentRepo
	sectionRepo *repo.SectionRepo
	cmpRepo     *repo.ComparisonRepo
	jobRepo     *repo.CompareJobRepo
	classifier  *compare.Classifier
	threshold   float64
	pool        *task.Pool
}

func NewCompareService(docRepo *repo.DocumentRepo, sectionRepo *repo.SectionRepo, cmpRepo *repo.ComparisonRepo, jobRepo *repo.CompareJobRepo, classifier *compare.Classifier, threshold float64, pool *task.Pool) *CompareService {
	if threshold <= 0 {
		threshold = compare.DefaultThreshold
	}
	return &CompareService{
		docRepo:     docRepo,
		sectionRepo: sectionRepo,
		cmpRepo:     cmpRepo,
		jobRepo:     jobRepo,
		classifier:  classifier,
		threshold:   threshold,
		pool:        pool,
	}
}

// Submit validates both documents and queues the comparison. Both sides
// must be fully processed; a document that is still segmenting or has
// failed cannot be compared yet.
func (s *CompareService) Submit(ctx context.Context, docAID, docBID string) (*model.CompareJob, error) {
	if docAID == "" || docBID == "" {
		return nil, fmt.Errorf("%w: both document ids are required", appErr.ErrInvalid)
	}
	if docAID == docBID {
		return nil, fmt.Errorf("%w: cannot compare a document with itself", appErr.ErrInvalid)
	}
	for _, docID := range []string{docAID, docBID} {
		doc, err := s.docRepo.GetByID(ctx, docID)
		if err != nil {
			return nil, err
		}
		if doc.Status != model.DocumentStatusProcessed {
			return nil, fmt.Errorf("%w: document %s is %s", appErr.ErrDocumentNotReady, docID, doc.Status)
		}
	}

	now := time.Now().UnixMilli()
	job := &model.CompareJob{
		ID:        newID(),
		DocumentA: docAID,
		DocumentB: docBID,
		Status:    model.CompareJobStatusQueued,
		Ctime:     now,
		Mtime:     now,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	jobID := job.ID
	if err := s.pool.Submit(task.Task{
		Name: "compare_documents",
		Run: func(taskCtx context.Context) error {
			return s.run(taskCtx, jobID)
		},
	}); err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("queue comparison: %v", err))
		return nil, err
	}
	return job, nil
}

// run executes one queued comparison end to end. The result is
// all-or-nothing: any error fails the job and no partial comparison row is
// written.
func (s *CompareService) run(ctx context.Context, jobID string) error {
	logger := logutil.GetLogger(ctx).With(zap.String("job_id", jobID))

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if err := s.jobRepo.UpdateStatus(ctx, jobID, model.CompareJobStatusProcessing, nil); err != nil {
		return err
	}

	result, err := s.compare(ctx, job.DocumentA, job.DocumentB)
	if err != nil {
		s.failJob(ctx, jobID, err.Error())
		return err
	}
	if err := s.cmpRepo.Create(ctx, result); err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("persist comparison: %v", err))
		return err
	}
	logger.Info("comparison stored", zap.String("comparison_id", result.ID))
	return s.jobRepo.UpdateStatus(ctx, jobID, model.CompareJobStatusDone, map[string]interface{}{
		"comparison_id": result.ID,
		"fail_reason":   "",
	})
}

func (s *CompareService) compare(ctx context.Context, docAID, docBID string) (*model.DocumentComparison, error) {
	sectionsA, err := s.sectionRepo.ListByDocument(ctx, docAID)
	if err != nil {
		return nil, fmt.Errorf("load sections of %s: %w", docAID, err)
	}
	sectionsB, err := s.sectionRepo.ListByDocument(ctx, docBID)
	if err != nil {
		return nil, fmt.Errorf("load sections of %s: %w", docBID, err)
	}

	alignment, err := compare.Align(ctx, sectionsA, sectionsB, s.threshold)
	if err != nil {
		return nil, err
	}
	entries, err := s.classifier.Classify(ctx, alignment)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode entries: %w", err)
	}
	return &model.DocumentComparison{
		ID:          newID(),
		DocumentA:   docAID,
		DocumentB:   docBID,
		DiffSummary: compare.RenderReport(entries),
		Entries:     encoded,
		Ctime:       time.Now().UnixMilli(),
	}, nil
}

func (s *CompareService) JobStatus(ctx context.Context, jobID string) (*model.CompareJob, error) {
	return s.jobRepo.GetByID(ctx, jobID)
}

func (s *CompareService) GetComparison(ctx context.Context, cmpID string) (*model.DocumentComparison, error) {
	return s.cmpRepo.GetByID(ctx, cmpID)
}

func (s *CompareService) ListByDocument(ctx context.Context, docID string, limit uint) ([]model.DocumentComparison, error) {
	if _, err := s.docRepo.GetByID(ctx, docID); err != nil {
		return nil, err
	}
	return s.cmpRepo.ListByDocument(ctx, docID, limit)
}

// MarkStaleJobs fails jobs that were queued or running before the cutoff.
func (s *CompareService) MarkStaleJobs(ctx context.Context, olderThan time.Time) (int64, error) {
	return s.jobRepo.MarkStale(ctx, olderThan)
}

// PurgeFinishedJobs removes terminal jobs past the retention window.
func (s *CompareService) PurgeFinishedJobs(ctx context.Context, olderThan time.Time) (int64, error) {
	return s.jobRepo.PurgeFinished(ctx, olderThan)
}

func (s *CompareService) failJob(ctx context.Context, jobID, reason string) {
	if err := s.jobRepo.UpdateStatus(ctx, jobID, model.CompareJobStatusFailed, map[string]interface{}{
		"fail_reason": reason,
	}); err != nil {
		logutil.GetLogger(ctx).Error("mark job failed",
			zap.String("job_id", jobID), zap.Error(err))
	}
}
