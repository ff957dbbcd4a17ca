package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/insightlens/insightlens/internal/embedcache"
	"github.com/insightlens/insightlens/internal/extract"
	"github.com/insightlens/insightlens/internal/filestore"
	"github.com/insightlens/insightlens/internal/model"
	appErr "github.com/insightlens/insightlens/internal/pkg/errors"
	"github.com/insightlens/insightlens/internal/repo"
	"github.com/insightlens/insightlens/internal/segment"
	"github.com/insightlens/insightlens/internal/task"
)

const maxUploadBytes = 10 * 1024 * 1024

type DocumentService struct {
	docRepo      *repo.DocumentRepo
	sectionRepo  *repo.SectionRepo
	store        filestore.Store
	embedder     embedcache.Embedder
	pool         *task.Pool
	embedWorkers int
}

func NewDocumentService(docRepo *repo.DocumentRepo, sectionRepo *repo.SectionRepo, store filestore.Store, embedder embedcache.Embedder, pool *task.Pool, embedWorkers int) *DocumentService {
	if embedWorkers <= 0 {
		embedWorkers = 4
	}
	return &DocumentService{
		docRepo:      docRepo,
		sectionRepo:  sectionRepo,
		store:        store,
		embedder:     embedder,
		pool:         pool,
		embedWorkers: embedWorkers,
	}
}

// Upload stores the raw file, creates the document row and queues
// processing. The returned document is in the uploaded state; segmentation
// and embedding happen on a pool worker.
func (s *DocumentService) Upload(ctx context.Context, filename string, data []byte, domainHint string) (*model.Document, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", appErr.ErrInvalid)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", appErr.ErrInvalid)
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", appErr.ErrInvalid, maxUploadBytes)
	}
	if !extract.Supported(filename) {
		return nil, fmt.Errorf("%w: unsupported file type %q", appErr.ErrInvalidFile, filepath.Ext(filename))
	}

	domain := ""
	if strings.TrimSpace(domainHint) != "" {
		domain = string(segment.ParseDomain(domainHint))
	}

	now := time.Now().UnixMilli()
	doc := &model.Document{
		ID:       newID(),
		Filename: filename,
		FileKey:  newID() + strings.ToLower(filepath.Ext(filename)),
		FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		FileSize: int64(len(data)),
		Status:   model.DocumentStatusUploaded,
		Domain:   domain,
		Ctime:    now,
		Mtime:    now,
	}
	if err := s.store.Save(ctx, doc.FileKey, bytes.NewReader(data), doc.FileSize); err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		_ = s.store.Delete(ctx, doc.FileKey)
		return nil, err
	}

	docID := doc.ID
	if err := s.pool.Submit(task.Task{
		Name: "process_document",
		Run: func(taskCtx context.Context) error {
			return s.Process(taskCtx, docID)
		},
	}); err != nil {
		s.fail(ctx, docID, fmt.Sprintf("queue processing: %v", err))
		return nil, err
	}
	return doc, nil
}

// Process runs the full pipeline for one document: extract, detect domain
// when the upload left no hint, segment, embed, persist. A terminal status
// is always written; embedding failures degrade that section to no vector
// instead of failing the document.
func (s *DocumentService) Process(ctx context.Context, docID string) error {
	logger := logutil.GetLogger(ctx).With(zap.String("document_id", docID))

	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if err := s.docRepo.UpdateStatus(ctx, docID, model.DocumentStatusProcessing, s.touch(nil)); err != nil {
		return err
	}

	text, err := s.loadText(ctx, doc)
	if err != nil {
		s.fail(ctx, docID, err.Error())
		return err
	}

	domain := segment.Domain(doc.Domain)
	if doc.Domain == "" {
		domain = DetectDomain(text)
		logger.Info("domain detected", zap.String("domain", string(domain)))
	}

	chunks := segment.Segment(ctx, text, domain)
	if len(chunks) == 0 {
		s.fail(ctx, docID, "document has no extractable content")
		return fmt.Errorf("%w: document has no extractable content", appErr.ErrInvalidFile)
	}

	now := time.Now().UnixMilli()
	sections := make([]model.DocumentSection, len(chunks))
	for i, chunk := range chunks {
		sections[i] = model.DocumentSection{
			ID:         newID(),
			DocumentID: docID,
			OrderIndex: chunk.Order,
			Title:      chunk.Title,
			Text:       chunk.Text,
			StartIndex: chunk.StartIndex,
			EndIndex:   chunk.EndIndex,
			Ctime:      now,
		}
	}
	s.embedSections(ctx, sections)

	if err := s.sectionRepo.InsertBatch(ctx, sections); err != nil {
		s.fail(ctx, docID, fmt.Sprintf("persist sections: %v", err))
		return err
	}
	return s.docRepo.UpdateStatus(ctx, docID, model.DocumentStatusProcessed, s.touch(map[string]interface{}{
		"domain":        string(domain),
		"section_count": len(sections),
		"fail_reason":   "",
	}))
}

// embedSections fills embeddings in place with a bounded fan-out. A section
// whose embed call fails keeps a nil vector and is later picked up by the
// backfill job.
func (s *DocumentService) embedSections(ctx context.Context, sections []model.DocumentSection) {
	logger := logutil.GetLogger(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.embedWorkers)
	for i := range sections {
		g.Go(func() error {
			vector, err := s.embedder.Embed(gctx, sections[i].Text)
			if err != nil {
				logger.Warn("embed section failed",
					zap.String("section_id", sections[i].ID),
					zap.Int("order", sections[i].OrderIndex),
					zap.Error(err),
				)
				return nil
			}
			sections[i].Embedding = vector
			return nil
		})
	}
	_ = g.Wait()
}

// BackfillEmbeddings retries embedding for a document's sections that still
// lack a vector. Returns how many sections were filled.
func (s *DocumentService) BackfillEmbeddings(ctx context.Context, docID string) (int, error) {
	missing, err := s.sectionRepo.ListMissingEmbedding(ctx, docID)
	if err != nil {
		return 0, err
	}
	filled := 0
	for _, sec := range missing {
		vector, err := s.embedder.Embed(ctx, sec.Text)
		if err != nil {
			logutil.GetLogger(ctx).Warn("backfill embed failed",
				zap.String("section_id", sec.ID), zap.Error(err))
			continue
		}
		if err := s.sectionRepo.UpdateEmbedding(ctx, sec.ID, vector); err != nil {
			return filled, err
		}
		filled += 1
	}
	return filled, nil
}

func (s *DocumentService) Get(ctx context.Context, docID string) (*model.Document, error) {
	return s.docRepo.GetByID(ctx, docID)
}

func (s *DocumentService) List(ctx context.Context, limit uint) ([]model.Document, error) {
	return s.docRepo.List(ctx, limit)
}

func (s *DocumentService) Sections(ctx context.Context, docID string) ([]model.DocumentSection, error) {
	if _, err := s.docRepo.GetByID(ctx, docID); err != nil {
		return nil, err
	}
	return s.sectionRepo.ListByDocument(ctx, docID)
}

func (s *DocumentService) ListWithMissingEmbeddings(ctx context.Context, limit int) ([]model.Document, error) {
	return s.docRepo.ListWithMissingEmbeddings(ctx, limit)
}

// Delete removes the document row (sections cascade) and then the stored
// file. A failed file removal is logged, not surfaced: the row is gone and
// the orphaned blob is harmless.
func (s *DocumentService) Delete(ctx context.Context, docID string) error {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if err := s.docRepo.Delete(ctx, docID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.FileKey); err != nil {
		logutil.GetLogger(ctx).Warn("delete stored file failed",
			zap.String("document_id", docID),
			zap.String("file_key", doc.FileKey),
			zap.Error(err),
		)
	}
	return nil
}

func (s *DocumentService) loadText(ctx context.Context, doc *model.Document) (string, error) {
	reader, err := s.store.Open(ctx, doc.FileKey)
	if err != nil {
		return "", fmt.Errorf("open stored file: %w", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read stored file: %w", err)
	}
	return extract.Text(doc.Filename, data)
}

func (s *DocumentService) fail(ctx context.Context, docID, reason string) {
	if err := s.docRepo.UpdateStatus(ctx, docID, model.DocumentStatusFailed, s.touch(map[string]interface{}{
		"fail_reason": reason,
	})); err != nil {
		logutil.GetLogger(ctx).Error("mark document failed",
			zap.String("document_id", docID), zap.Error(err))
	}
}

func (s *DocumentService) touch(update map[string]interface{}) map[string]interface{} {
	if update == nil {
		update = map[string]interface{}{}
	}
	update["mtime"] = time.Now().UnixMilli()
	return update
}
