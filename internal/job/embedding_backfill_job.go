package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/insightlens/insightlens/internal/service"
)

// EmbeddingBackfillJob retries embedding for sections that were left
// without a vector because the provider was down or throttling during
// processing. Affected sections show up as skipped in comparisons until
// this fills them in.
type EmbeddingBackfillJob struct {
	documents *service.DocumentService
	batch     int
}

func NewEmbeddingBackfillJob(documents *service.DocumentService, batch int) *EmbeddingBackfillJob {
	if batch <= 0 {
		batch = 20
	}
	return &EmbeddingBackfillJob{documents: documents, batch: batch}
}

func (j *EmbeddingBackfillJob) Name() string {
	return "embedding_backfill"
}

func (j *EmbeddingBackfillJob) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	docs, err := j.documents.ListWithMissingEmbeddings(ctx, j.batch)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		filled, err := j.documents.BackfillEmbeddings(ctx, doc.ID)
		if err != nil {
			logger.Warn("backfill document failed",
				zap.String("document_id", doc.ID), zap.Error(err))
			continue
		}
		if filled > 0 {
			logger.Info("embeddings backfilled",
				zap.String("document_id", doc.ID), zap.Int("filled", filled))
		}
	}
	return nil
}
