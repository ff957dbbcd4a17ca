package compare

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/insightlens/insightlens/internal/model"
)

// NoChangeSentinel is the exact phrase the summarizer contract returns to
// signal that a matched pair has no substantive differences. The caller
// matches it case-insensitively, trailing period included.
const NoChangeSentinel = "No significant changes detected."

// EmptyReportFallback replaces a report in which nothing was emitted.
const EmptyReportFallback = "No differences identified between the documents based on the comparison criteria."

type Kind string

const (
	KindUnchanged Kind = "unchanged"
	KindChanged   Kind = "changed"
	KindAdded     Kind = "added"
	KindDeleted   Kind = "deleted"
	KindSkipped   Kind = "skipped"
)

// SectionRef identifies one side of a diff entry without dragging the full
// section text along.
type SectionRef struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
	Title string `json:"title,omitempty"`
}

type DiffEntry struct {
	Kind       Kind        `json:"kind"`
	SectionA   *SectionRef `json:"section_a,omitempty"`
	SectionB   *SectionRef `json:"section_b,omitempty"`
	Similarity float64     `json:"similarity,omitempty"`
	Narrative  string      `json:"narrative,omitempty"`
	Snippet    string      `json:"snippet,omitempty"`
}

// Summarizer narrates the differences between two matched section texts.
// It must return NoChangeSentinel when the pair is semantically equivalent.
type Summarizer interface {
	Summarize(ctx context.Context, textA, textB string) (string, error)
}

type ClassifierOptions struct {
	// MaxConcurrency bounds the summarizer fan-out for matched pairs.
	MaxConcurrency int
	// RatePerSec throttles summarizer calls; 0 disables throttling.
	RatePerSec float64
	// SnippetMax caps added/deleted text snippets, in characters.
	SnippetMax int
}

type Classifier struct {
	summarizer Summarizer
	limiter    *rate.Limiter
	opts       ClassifierOptions
}

func NewClassifier(summarizer Summarizer, opts ClassifierOptions) *Classifier {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 4
	}
	if opts.SnippetMax <= 0 {
		opts.SnippetMax = 200
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)
	}
	return &Classifier{summarizer: summarizer, limiter: limiter, opts: opts}
}

// Classify turns an alignment into the ordered diff entry sequence:
// unchanged/changed/deleted/skipped entries interleaved in A's original
// order, added entries appended in B's order. Summarizer calls for matched
// pairs run concurrently under the concurrency and rate bounds; a failed
// call degrades to an inline error narrative for that pair only.
// Cancellation aborts the whole classification, never yielding a partial
// entry sequence.
func (c *Classifier) Classify(ctx context.Context, alignment *Alignment) ([]DiffEntry, error) {
	logger := logutil.GetLogger(ctx)

	narratives := make([]string, len(alignment.Matched))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.MaxConcurrency)
	for i, pair := range alignment.Matched {
		g.Go(func() error {
			if err := c.limiter.Wait(gctx); err != nil {
				return err
			}
			narrative, err := c.summarizer.Summarize(gctx, pair.A.Text, pair.B.Text)
			if err != nil {
				logger.Warn("summarizer failed for pair",
					zap.Int("order_a", pair.A.OrderIndex),
					zap.Int("order_b", pair.B.OrderIndex),
					zap.Error(err),
				)
				narratives[i] = fmt.Sprintf("Error: could not analyze differences between these sections: %v", err)
				return nil
			}
			narratives[i] = strings.TrimSpace(narrative)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	type ordered struct {
		order int
		entry DiffEntry
	}
	rows := make([]ordered, 0, len(alignment.Matched)+len(alignment.UnmatchedA)+len(alignment.SkippedA))

	for i, pair := range alignment.Matched {
		entry := DiffEntry{
			SectionA:   sectionRef(pair.A),
			SectionB:   sectionRef(pair.B),
			Similarity: pair.Similarity,
		}
		if isNoChange(narratives[i]) {
			entry.Kind = KindUnchanged
		} else {
			entry.Kind = KindChanged
			entry.Narrative = narratives[i]
		}
		rows = append(rows, ordered{order: pair.A.OrderIndex, entry: entry})
	}
	for _, sec := range alignment.UnmatchedA {
		rows = append(rows, ordered{order: sec.OrderIndex, entry: DiffEntry{
			Kind:     KindDeleted,
			SectionA: sectionRef(sec),
			Snippet:  truncateSnippet(sec.Text, c.opts.SnippetMax),
		}})
	}
	for _, sec := range alignment.SkippedA {
		rows = append(rows, ordered{order: sec.OrderIndex, entry: DiffEntry{
			Kind:     KindSkipped,
			SectionA: sectionRef(sec),
		}})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].order < rows[j].order })

	entries := make([]DiffEntry, 0, len(rows)+len(alignment.UnmatchedB))
	for _, row := range rows {
		entries = append(entries, row.entry)
	}
	for _, sec := range alignment.UnmatchedB {
		entries = append(entries, DiffEntry{
			Kind:     KindAdded,
			SectionB: sectionRef(sec),
			Snippet:  truncateSnippet(sec.Text, c.opts.SnippetMax),
		})
	}
	return entries, nil
}

func isNoChange(narrative string) bool {
	return strings.EqualFold(strings.TrimSpace(narrative), NoChangeSentinel)
}

func sectionRef(sec model.DocumentSection) *SectionRef {
	return &SectionRef{
		ID:    sec.ID,
		Order: sec.OrderIndex,
		Title: strings.TrimSpace(sec.Title),
	}
}

// truncateSnippet cuts text at the last whitespace at or before max when
// that boundary sits beyond half of max, else hard at max. An ellipsis
// marker is appended whenever anything was cut.
func truncateSnippet(text string, max int) string {
	if len(text) <= max {
		return text
	}
	boundary := strings.LastIndexFunc(text[:max+1], unicode.IsSpace)
	if boundary > max/2 {
		return text[:boundary] + "..."
	}
	return text[:max] + "..."
}
