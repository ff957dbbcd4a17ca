package compare

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/insightlens/insightlens/internal/model"
	appErr "github.com/insightlens/insightlens/internal/pkg/errors"
)

func section(id string, order int, embedding ...float32) model.DocumentSection {
	return model.DocumentSection{
		ID:         id,
		OrderIndex: order,
		Text:       "text of " + id,
		Embedding:  embedding,
	}
}

func TestCosineSimilarity(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0})
	require.NoError(t, err)
	require.InDelta(t, 1.0, sim, 1e-9)

	sim, err = CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	require.InDelta(t, 0.0, sim, 1e-9)

	sim, err = CosineSimilarity([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	require.InDelta(t, -1.0, sim, 1e-9)
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	sim, err := CosineSimilarity([]float32{0, 0}, []float32{1, 2})
	require.NoError(t, err)
	require.Equal(t, 0.0, sim)
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0})
	require.ErrorIs(t, err, appErr.ErrDimensionMismatch)
}

func TestAlignMatchesAboveThreshold(t *testing.T) {
	sectionsA := []model.DocumentSection{
		section("a0", 0, 1, 0),
		section("a1", 1, 0, 1),
	}
	sectionsB := []model.DocumentSection{
		section("b0", 0, 1, 0),
		section("b1", 1, 0, 1),
	}
	alignment, err := Align(context.Background(), sectionsA, sectionsB, DefaultThreshold)
	require.NoError(t, err)
	require.Len(t, alignment.Matched, 2)
	require.Empty(t, alignment.UnmatchedA)
	require.Empty(t, alignment.UnmatchedB)
	require.Equal(t, "b0", alignment.Matched[0].B.ID)
	require.Equal(t, "b1", alignment.Matched[1].B.ID)
}

func TestAlignBelowThresholdUnmatched(t *testing.T) {
	sectionsA := []model.DocumentSection{section("a0", 0, 1, 0)}
	sectionsB := []model.DocumentSection{section("b0", 0, 0.5, 0.866)}
	alignment, err := Align(context.Background(), sectionsA, sectionsB, DefaultThreshold)
	require.NoError(t, err)
	require.Empty(t, alignment.Matched)
	require.Len(t, alignment.UnmatchedA, 1)
	require.Len(t, alignment.UnmatchedB, 1)
}

func TestAlignClaimedSectionIsNotRerouted(t *testing.T) {
	// Both A sections are nearest to b0. a0 claims it; a1 is left
	// unmatched even though b1 would also clear the threshold.
	sectionsA := []model.DocumentSection{
		section("a0", 0, 1, 0),
		section("a1", 1, 0.97, 0.24),
	}
	sectionsB := []model.DocumentSection{
		section("b0", 0, 1, 0),
		section("b1", 1, 0.8, 0.6),
	}
	alignment, err := Align(context.Background(), sectionsA, sectionsB, DefaultThreshold)
	require.NoError(t, err)
	require.Len(t, alignment.Matched, 1)
	require.Equal(t, "a0", alignment.Matched[0].A.ID)
	require.Equal(t, "b0", alignment.Matched[0].B.ID)
	require.Len(t, alignment.UnmatchedA, 1)
	require.Equal(t, "a1", alignment.UnmatchedA[0].ID)
	require.Len(t, alignment.UnmatchedB, 1)
	require.Equal(t, "b1", alignment.UnmatchedB[0].ID)
}

func TestAlignSkipsSectionsWithoutEmbedding(t *testing.T) {
	sectionsA := []model.DocumentSection{
		section("a0", 0), // no embedding
		section("a1", 1, 1, 0),
	}
	sectionsB := []model.DocumentSection{
		section("b0", 0), // no embedding, excluded as candidate
		section("b1", 1, 1, 0),
	}
	alignment, err := Align(context.Background(), sectionsA, sectionsB, DefaultThreshold)
	require.NoError(t, err)
	require.Len(t, alignment.SkippedA, 1)
	require.Equal(t, "a0", alignment.SkippedA[0].ID)
	require.Len(t, alignment.Matched, 1)
	require.Equal(t, "b1", alignment.Matched[0].B.ID)
	require.Len(t, alignment.UnmatchedB, 1)
	require.Equal(t, "b0", alignment.UnmatchedB[0].ID)
}

func TestAlignDimensionMismatchIsFatal(t *testing.T) {
	sectionsA := []model.DocumentSection{section("a0", 0, 1, 0)}
	sectionsB := []model.DocumentSection{section("b0", 0, 1, 0, 0)}
	_, err := Align(context.Background(), sectionsA, sectionsB, DefaultThreshold)
	require.ErrorIs(t, err, appErr.ErrDimensionMismatch)
}

func TestAlignDeterministic(t *testing.T) {
	sectionsA := []model.DocumentSection{
		section("a0", 0, 0.9, 0.1),
		section("a1", 1, 0.1, 0.9),
		section("a2", 2, 0.7, 0.7),
	}
	sectionsB := []model.DocumentSection{
		section("b0", 0, 0.9, 0.1),
		section("b1", 1, 0.7, 0.7),
	}
	first, err := Align(context.Background(), sectionsA, sectionsB, DefaultThreshold)
	require.NoError(t, err)
	second, err := Align(context.Background(), sectionsA, sectionsB, DefaultThreshold)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
