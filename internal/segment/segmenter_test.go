package segment

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentEmptyInput(t *testing.T) {
	require.Nil(t, Segment(context.Background(), "", DomainGeneric))
	require.Nil(t, Segment(context.Background(), "   \n\t  ", DomainLegal))
}

func TestSegmentMarkdownHeadings(t *testing.T) {
	text := "preamble before any heading\n\n# Introduction\nsome intro text\n\n## Details\nmore detail text\n"
	chunks := Segment(context.Background(), text, DomainGeneric)
	require.Len(t, chunks, 3)

	require.Equal(t, "", chunks[0].Title)
	require.Equal(t, "preamble before any heading", chunks[0].Text)
	require.Equal(t, "# Introduction", chunks[1].Title)
	require.Equal(t, "## Details", chunks[2].Title)
	require.Contains(t, chunks[1].Text, "some intro text")
	require.Contains(t, chunks[2].Text, "more detail text")
}

func TestSegmentOrderAndOffsets(t *testing.T) {
	text := "# One\nalpha\n\n# Two\nbeta\n\n# Three\ngamma\n"
	chunks := Segment(context.Background(), text, DomainGeneric)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		require.Equal(t, i, chunk.Order)
		require.Equal(t, chunk.Text, text[chunk.StartIndex:chunk.EndIndex])
	}
}

func TestSegmentLegalHeadings(t *testing.T) {
	text := "ARTICLE I. Definitions\nterms are defined here\n\nSection 2.1 Payment\npayment obligations\n\nWHEREAS the parties agree\nrecitals text\n"
	chunks := Segment(context.Background(), text, DomainLegal)
	require.Len(t, chunks, 3)
	require.Equal(t, "ARTICLE I. Definitions", chunks[0].Title)
	require.Equal(t, "Section 2.1 Payment", chunks[1].Title)
	require.Equal(t, "WHEREAS the parties agree", chunks[2].Title)
}

func TestSegmentFinancialHeadings(t *testing.T) {
	text := "Item 1A. Risk Factors\nthe risks\n\nResults of Operations\nrevenue went up\n"
	chunks := Segment(context.Background(), text, DomainFinancial)
	require.Len(t, chunks, 2)
	require.Equal(t, "Item 1A. Risk Factors", chunks[0].Title)
	require.Equal(t, "Results of Operations", chunks[1].Title)
}

func TestSegmentUnknownDomainFallsBackToGeneric(t *testing.T) {
	require.Equal(t, DomainGeneric, ParseDomain("astrology"))
	require.Equal(t, DomainGeneric, ParseDomain(""))
	require.Equal(t, DomainLegal, ParseDomain("  Legal "))
}

func TestSegmentOversizedRespectsCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Long Section\n")
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "This is sentence number %d in a very long section. ", i)
	}
	chunks := Segment(context.Background(), b.String(), DomainGeneric)
	require.Greater(t, len(chunks), 1)

	maxSize := ProfileFor(DomainGeneric).MaxChunkSize
	for i, chunk := range chunks {
		require.LessOrEqual(t, len(chunk.Text), maxSize)
		require.Equal(t, i, chunk.Order)
		// Every piece of the oversized section keeps the opening title.
		require.Equal(t, "# Long Section", chunk.Title)
	}
}

func TestSegmentDomainCapsDiffer(t *testing.T) {
	body := strings.Repeat("Short sentence here. ", 60) // ~1260 chars

	legal := Segment(context.Background(), body, DomainLegal)
	for _, chunk := range legal {
		require.LessOrEqual(t, len(chunk.Text), 800)
	}
	financial := Segment(context.Background(), body, DomainFinancial)
	for _, chunk := range financial {
		require.LessOrEqual(t, len(chunk.Text), 1200)
	}
}

func TestSegmentUnbrokenRunHardCuts(t *testing.T) {
	text := strings.Repeat("a", 2500)
	chunks := Segment(context.Background(), text, DomainGeneric)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		require.LessOrEqual(t, len(chunk.Text), 1000)
		require.Equal(t, chunk.Text, text[chunk.StartIndex:chunk.EndIndex])
	}
	// Overlapping windows may revisit text but never lose any: the pieces
	// start at the beginning and end at the end.
	require.Equal(t, 0, chunks[0].StartIndex)
	require.Equal(t, len(text), chunks[len(chunks)-1].EndIndex)
	for i := 1; i < len(chunks); i++ {
		require.LessOrEqual(t, chunks[i].StartIndex, chunks[i-1].EndIndex)
		require.Greater(t, chunks[i].EndIndex, chunks[i-1].EndIndex)
	}
}

func TestSegmentParagraphSplitBeforeWindowing(t *testing.T) {
	para := strings.Repeat("word ", 90) // ~450 chars, under the cap
	text := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)
	chunks := Segment(context.Background(), text, DomainGeneric)
	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		require.Equal(t, strings.TrimSpace(para), chunk.Text)
	}
}

func TestSegmentDeterministic(t *testing.T) {
	text := "# A\n" + strings.Repeat("Some sentence goes here. ", 100) + "\n\n# B\ntail"
	first := Segment(context.Background(), text, DomainMedical)
	second := Segment(context.Background(), text, DomainMedical)
	require.Equal(t, first, second)
}
