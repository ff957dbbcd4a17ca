package segment

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Chunk is one ordered span of a document's text. Order is contiguous and
// 0-based over the final chunk list, StartIndex/EndIndex are byte offsets
// into the input text, and Title carries the heading that opened the chunk
// (empty for content before the first heading).
type Chunk struct {
	Order      int
	Title      string
	Text       string
	StartIndex int
	EndIndex   int
}

var (
	paragraphSepRe = regexp.MustCompile(`\n[ \t\r]*\n\s*`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]+["')\]]*\s`)
)

// Segment splits text into ordered chunks using the domain's heading
// patterns, then applies size control to anything over the domain cap.
// It never fails: malformed input degrades to a plain size-based split,
// and empty input yields no chunks.
func Segment(ctx context.Context, text string, domain Domain) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	profile := ProfileFor(domain)
	logger := logutil.GetLogger(ctx).With(zap.String("domain", string(profile.Domain)))

	initial := splitByHeadings(text, profile)

	final := make([]Chunk, 0, len(initial))
	for _, chunk := range initial {
		if len(chunk.Text) > profile.MaxChunkSize {
			pieces := splitOversized(chunk, profile)
			logger.Debug("split oversized chunk",
				zap.String("title", chunk.Title),
				zap.Int("size", len(chunk.Text)),
				zap.Int("pieces", len(pieces)),
			)
			final = append(final, pieces...)
			continue
		}
		final = append(final, chunk)
	}
	// Order is assigned over the final list, after all size-driven splits.
	for i := range final {
		final[i].Order = i
	}
	logger.Info("segmented document",
		zap.Int("input_chars", len(text)),
		zap.Int("headings", len(initial)),
		zap.Int("chunks", len(final)),
	)
	return final
}

type headingMatch struct {
	start int
	end   int
}

// splitByHeadings cuts the text at every heading match, in document order.
// The span before the first heading (if any) becomes an untitled chunk;
// every other chunk starts at a heading and carries its trimmed text as
// title. Zero matches leave the whole text as a single untitled chunk.
func splitByHeadings(text string, profile Profile) []Chunk {
	var matches []headingMatch
	for _, pattern := range profile.Patterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			matches = append(matches, headingMatch{start: loc[0], end: loc[1]})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].end > matches[j].end
	})
	// Drop duplicate and overlapping matches from different patterns.
	dedup := matches[:0]
	lastEnd := -1
	for _, m := range matches {
		if m.start < lastEnd {
			continue
		}
		dedup = append(dedup, m)
		lastEnd = m.end
	}
	matches = dedup

	if len(matches) == 0 {
		chunk, ok := makeChunk(text, 0, "")
		if !ok {
			return nil
		}
		return []Chunk{chunk}
	}

	var chunks []Chunk
	if chunk, ok := makeChunk(text[:matches[0].start], 0, ""); ok {
		chunks = append(chunks, chunk)
	}
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1].start
		}
		title := strings.TrimSpace(text[m.start:m.end])
		if chunk, ok := makeChunk(text[m.start:end], m.start, title); ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// splitOversized re-splits a chunk that exceeds the domain cap: first at
// blank-line paragraph boundaries, then with the windowed cutter for any
// paragraph still over the cap. Sub-chunks inherit the parent title.
func splitOversized(chunk Chunk, profile Profile) []Chunk {
	var out []Chunk
	prev := 0
	spans := paragraphSepRe.FindAllStringIndex(chunk.Text, -1)
	for i := 0; i <= len(spans); i++ {
		end := len(chunk.Text)
		if i < len(spans) {
			end = spans[i][0]
		}
		piece, ok := makeChunk(chunk.Text[prev:end], chunk.StartIndex+prev, chunk.Title)
		if i < len(spans) {
			prev = spans[i][1]
		}
		if !ok {
			continue
		}
		if len(piece.Text) <= profile.MaxChunkSize {
			out = append(out, piece)
			continue
		}
		out = append(out, splitWindowed(piece, profile.MaxChunkSize, profile.Overlap)...)
	}
	return out
}

// splitWindowed cuts a paragraph with no usable blank-line boundaries into
// cap-sized pieces. The cut lands on the last sentence end inside the
// window when one exists, else on the last whitespace, else hard at the
// cap. After a non-sentence cut the next window starts overlap characters
// earlier, so text spanning the cut survives in both pieces.
func splitWindowed(chunk Chunk, maxSize, overlap int) []Chunk {
	var out []Chunk
	text := chunk.Text
	pos := 0
	for len(text)-pos > maxSize {
		window := text[pos : pos+maxSize]
		cut, atSentence := findCut(window)
		if piece, ok := makeChunk(text[pos:pos+cut], chunk.StartIndex+pos, chunk.Title); ok {
			out = append(out, piece)
		}
		next := pos + cut
		if !atSentence && cut > overlap {
			next = pos + cut - overlap
		}
		if next <= pos {
			// Always make progress, even against degenerate input.
			next = pos + maxSize
		}
		pos = next
	}
	if piece, ok := makeChunk(text[pos:], chunk.StartIndex+pos, chunk.Title); ok {
		out = append(out, piece)
	}
	return out
}

// findCut picks the split point inside a window: the position right after
// the last sentence-ending punctuation run, else the last whitespace, else
// the full window (a hard cut, only reachable for an unbroken run of
// non-whitespace longer than the cap).
func findCut(window string) (cut int, atSentence bool) {
	if locs := sentenceEndRe.FindAllStringIndex(window, -1); len(locs) > 0 {
		return locs[len(locs)-1][1], true
	}
	if idx := strings.LastIndexFunc(window, unicode.IsSpace); idx > 0 {
		return idx, false
	}
	return len(window), false
}

// makeChunk trims raw and builds a chunk whose offsets point at the
// trimmed span of the original text. Whitespace-only input is discarded.
func makeChunk(raw string, absStart int, title string) (Chunk, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Chunk{}, false
	}
	lead := len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
	start := absStart + lead
	return Chunk{
		Title:      title,
		Text:       trimmed,
		StartIndex: start,
		EndIndex:   start + len(trimmed),
	}, true
}
