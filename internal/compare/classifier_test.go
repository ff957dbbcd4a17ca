package compare

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/insightlens/insightlens/internal/model"
)

type fakeSummarizer struct {
	fn func(textA, textB string) (string, error)
}

func (f *fakeSummarizer) Summarize(ctx context.Context, textA, textB string) (string, error) {
	return f.fn(textA, textB)
}

func textSection(id string, order int, text string) model.DocumentSection {
	return model.DocumentSection{
		ID:         id,
		OrderIndex: order,
		Text:       text,
		Embedding:  []float32{1, 0},
	}
}

func TestClassifySentinelMeansUnchanged(t *testing.T) {
	summarizer := &fakeSummarizer{fn: func(a, b string) (string, error) {
		return "  no significant CHANGES detected.  ", nil
	}}
	classifier := NewClassifier(summarizer, ClassifierOptions{})

	alignment := &Alignment{Matched: []MatchedPair{{
		A:          textSection("a0", 0, "same text"),
		B:          textSection("b0", 0, "same text"),
		Similarity: 0.99,
	}}}
	entries, err := classifier.Classify(context.Background(), alignment)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, KindUnchanged, entries[0].Kind)
	require.Empty(t, entries[0].Narrative)
}

func TestClassifySentinelInsideLongerTextIsAChange(t *testing.T) {
	summarizer := &fakeSummarizer{fn: func(a, b string) (string, error) {
		return "Mostly no significant changes detected, except the date moved.", nil
	}}
	classifier := NewClassifier(summarizer, ClassifierOptions{})

	alignment := &Alignment{Matched: []MatchedPair{{
		A: textSection("a0", 0, "old"), B: textSection("b0", 0, "new"), Similarity: 0.9,
	}}}
	entries, err := classifier.Classify(context.Background(), alignment)
	require.NoError(t, err)
	require.Equal(t, KindChanged, entries[0].Kind)
	require.Contains(t, entries[0].Narrative, "date moved")
}

func TestClassifySummarizerErrorDegradesToInlineNarrative(t *testing.T) {
	summarizer := &fakeSummarizer{fn: func(a, b string) (string, error) {
		return "", errors.New("model timeout")
	}}
	classifier := NewClassifier(summarizer, ClassifierOptions{})

	alignment := &Alignment{Matched: []MatchedPair{{
		A: textSection("a0", 0, "old"), B: textSection("b0", 0, "new"), Similarity: 0.9,
	}}}
	entries, err := classifier.Classify(context.Background(), alignment)
	require.NoError(t, err)
	require.Equal(t, KindChanged, entries[0].Kind)
	require.Contains(t, entries[0].Narrative, "Error: could not analyze differences between these sections")
	require.Contains(t, entries[0].Narrative, "model timeout")
}

func TestClassifyCancellationAbortsWholeRun(t *testing.T) {
	summarizer := &fakeSummarizer{fn: func(a, b string) (string, error) {
		return "fine", nil
	}}
	classifier := NewClassifier(summarizer, ClassifierOptions{RatePerSec: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	alignment := &Alignment{Matched: []MatchedPair{
		{A: textSection("a0", 0, "x"), B: textSection("b0", 0, "y"), Similarity: 0.9},
		{A: textSection("a1", 1, "x"), B: textSection("b1", 1, "y"), Similarity: 0.9},
	}}
	_, err := classifier.Classify(ctx, alignment)
	require.Error(t, err)
}

func TestClassifyOrdering(t *testing.T) {
	summarizer := &fakeSummarizer{fn: func(a, b string) (string, error) {
		if a == b {
			return NoChangeSentinel, nil
		}
		return "* wording changed", nil
	}}
	classifier := NewClassifier(summarizer, ClassifierOptions{})

	alignment := &Alignment{
		Matched: []MatchedPair{
			{A: textSection("a0", 0, "same"), B: textSection("b1", 1, "same"), Similarity: 0.95},
			{A: textSection("a3", 3, "old wording"), B: textSection("b2", 2, "new wording"), Similarity: 0.85},
		},
		UnmatchedA: []model.DocumentSection{textSection("a1", 1, "deleted text")},
		SkippedA:   []model.DocumentSection{textSection("a2", 2, "no embedding")},
		UnmatchedB: []model.DocumentSection{
			textSection("b0", 0, "brand new intro"),
			textSection("b3", 3, "brand new tail"),
		},
	}
	entries, err := classifier.Classify(context.Background(), alignment)
	require.NoError(t, err)
	require.Len(t, entries, 6)

	// A-side entries interleaved by A order, then added in B order.
	require.Equal(t, KindUnchanged, entries[0].Kind)
	require.Equal(t, KindDeleted, entries[1].Kind)
	require.Equal(t, "a1", entries[1].SectionA.ID)
	require.Equal(t, KindSkipped, entries[2].Kind)
	require.Equal(t, "a2", entries[2].SectionA.ID)
	require.Equal(t, KindChanged, entries[3].Kind)
	require.Equal(t, "a3", entries[3].SectionA.ID)
	require.Equal(t, KindAdded, entries[4].Kind)
	require.Equal(t, "b0", entries[4].SectionB.ID)
	require.Equal(t, KindAdded, entries[5].Kind)
	require.Equal(t, "b3", entries[5].SectionB.ID)
}

func TestTruncateSnippetWordBoundary(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 10)) // 49 chars
	out := truncateSnippet(text, 20)
	require.Equal(t, "word word word word...", out)
}

func TestTruncateSnippetHardCut(t *testing.T) {
	text := strings.Repeat("x", 50)
	out := truncateSnippet(text, 20)
	require.Equal(t, strings.Repeat("x", 20)+"...", out)
}

func TestTruncateSnippetShortTextUntouched(t *testing.T) {
	require.Equal(t, "short", truncateSnippet("short", 20))
}

func TestTruncateSnippetEarlyBoundaryFallsBackToHardCut(t *testing.T) {
	// Only whitespace near the start: the boundary is before max/2, so the
	// cut is hard at max.
	text := "ab " + strings.Repeat("c", 60)
	out := truncateSnippet(text, 20)
	require.Equal(t, text[:20]+"...", out)
}
