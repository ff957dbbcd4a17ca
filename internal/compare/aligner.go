package compare

import (
	"context"
	"fmt"
	"math"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/insightlens/insightlens/internal/model"
	appErr "github.com/insightlens/insightlens/internal/pkg/errors"
)

// DefaultThreshold is the minimum cosine similarity for two sections to be
// treated as the same logical section across document versions.
const DefaultThreshold = 0.80

type MatchedPair struct {
	A          model.DocumentSection
	B          model.DocumentSection
	Similarity float64
}

// Alignment is the best-effort one-to-one correspondence between the
// sections of two documents. Every B section appears in at most one
// matched pair. SkippedA holds A sections that had no embedding at all and
// were excluded from matching.
type Alignment struct {
	Matched    []MatchedPair
	UnmatchedA []model.DocumentSection
	UnmatchedB []model.DocumentSection
	SkippedA   []model.DocumentSection
}

// CosineSimilarity returns the normalized dot product of two vectors.
// Zero-magnitude input yields 0 rather than dividing by zero. Differing
// lengths mean the two embedding spaces are incompatible and return
// ErrDimensionMismatch.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", appErr.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Align walks the sections of A in order and claims the single nearest B
// section by cosine similarity. A claim is accepted only when similarity
// reaches the threshold and the B section is still unclaimed; a later A
// section whose nearest neighbour is already taken is not rerouted to a
// second-best candidate, it simply goes unmatched. Both inputs must be
// ordered by OrderIndex. A dimension mismatch anywhere is fatal for the
// whole alignment.
func Align(ctx context.Context, sectionsA, sectionsB []model.DocumentSection, threshold float64) (*Alignment, error) {
	logger := logutil.GetLogger(ctx)
	result := &Alignment{}
	claimed := make(map[int]bool, len(sectionsB))

	for _, secA := range sectionsA {
		if len(secA.Embedding) == 0 {
			logger.Warn("section has no embedding, skipping",
				zap.String("section_id", secA.ID),
				zap.Int("order", secA.OrderIndex),
			)
			result.SkippedA = append(result.SkippedA, secA)
			continue
		}

		best := -1
		bestSim := 0.0
		for j, secB := range sectionsB {
			if len(secB.Embedding) == 0 {
				continue
			}
			sim, err := CosineSimilarity(secA.Embedding, secB.Embedding)
			if err != nil {
				return nil, err
			}
			if best == -1 || sim > bestSim {
				best = j
				bestSim = sim
			}
		}

		if best >= 0 && bestSim >= threshold && !claimed[best] {
			claimed[best] = true
			result.Matched = append(result.Matched, MatchedPair{
				A:          secA,
				B:          sectionsB[best],
				Similarity: bestSim,
			})
			continue
		}
		if best >= 0 && bestSim >= threshold {
			logger.Debug("nearest section already claimed",
				zap.Int("order_a", secA.OrderIndex),
				zap.Int("order_b", sectionsB[best].OrderIndex),
				zap.Float64("similarity", bestSim),
			)
		}
		result.UnmatchedA = append(result.UnmatchedA, secA)
	}

	for j, secB := range sectionsB {
		if !claimed[j] {
			result.UnmatchedB = append(result.UnmatchedB, secB)
		}
	}

	logger.Info("alignment computed",
		zap.Int("matched", len(result.Matched)),
		zap.Int("unmatched_a", len(result.UnmatchedA)),
		zap.Int("unmatched_b", len(result.UnmatchedB)),
		zap.Int("skipped_a", len(result.SkippedA)),
	)
	return result, nil
}
