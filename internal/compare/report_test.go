package compare

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderReportChanged(t *testing.T) {
	entries := []DiffEntry{{
		Kind:      KindChanged,
		SectionA:  &SectionRef{ID: "a", Order: 2, Title: "ARTICLE II. Payment"},
		SectionB:  &SectionRef{ID: "b", Order: 2, Title: "ARTICLE II. Payment"},
		Narrative: "* payment deadline moved from 30 to 45 days",
	}}
	report := RenderReport(entries)
	require.Equal(t,
		"--- Section Comparison (A: 'ARTICLE II. Payment' (ID: 2) vs B: 'ARTICLE II. Payment' (ID: 2)) ---\n"+
			"* payment deadline moved from 30 to 45 days",
		report)
}

func TestRenderReportDeletedAndAdded(t *testing.T) {
	entries := []DiffEntry{
		{Kind: KindDeleted, SectionA: &SectionRef{ID: "a", Order: 1}, Snippet: "old clause text"},
		{Kind: KindAdded, SectionB: &SectionRef{ID: "b", Order: 4, Title: "Appendix"}, Snippet: "new appendix text"},
	}
	report := RenderReport(entries)
	require.Contains(t, report, "--- Section Deleted (from A: ID: 1) ---")
	require.Contains(t, report, "Content Snippet:\n```\nold clause text\n```")
	require.Contains(t, report, "--- Section Added (in B: 'Appendix' (ID: 4)) ---")
	require.Contains(t, report, "new appendix text")
}

func TestRenderReportSkipped(t *testing.T) {
	entries := []DiffEntry{
		{Kind: KindSkipped, SectionA: &SectionRef{ID: "a", Order: 0, Title: "Intro"}},
	}
	report := RenderReport(entries)
	require.Equal(t, "--- Section Skipped (from A: 'Intro' (ID: 0)) due to missing embedding ---", report)
}

func TestRenderReportAllUnchangedCollapsesToFallback(t *testing.T) {
	entries := []DiffEntry{
		{Kind: KindUnchanged, SectionA: &SectionRef{ID: "a", Order: 0}, SectionB: &SectionRef{ID: "b", Order: 0}},
		{Kind: KindUnchanged, SectionA: &SectionRef{ID: "c", Order: 1}, SectionB: &SectionRef{ID: "d", Order: 1}},
	}
	require.Equal(t, EmptyReportFallback, RenderReport(entries))
}

func TestRenderReportEmptyEntries(t *testing.T) {
	require.Equal(t, EmptyReportFallback, RenderReport(nil))
}
