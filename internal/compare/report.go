package compare

import (
	"fmt"
	"strings"
)

// RenderReport serializes diff entries into the legacy delimited text
// report. Unchanged pairs emit nothing; an entirely quiet report collapses
// to the fallback message.
func RenderReport(entries []DiffEntry) string {
	var b strings.Builder
	for _, entry := range entries {
		switch entry.Kind {
		case KindUnchanged:
			// No visible entry for equivalent pairs.
		case KindChanged:
			fmt.Fprintf(&b, "--- Section Comparison (A: %s vs B: %s) ---\n", sectionLabel(entry.SectionA), sectionLabel(entry.SectionB))
			fmt.Fprintf(&b, "%s\n\n", entry.Narrative)
		case KindDeleted:
			fmt.Fprintf(&b, "--- Section Deleted (from A: %s) ---\n", sectionLabel(entry.SectionA))
			fmt.Fprintf(&b, "Content Snippet:\n```\n%s\n```\n\n", entry.Snippet)
		case KindAdded:
			fmt.Fprintf(&b, "--- Section Added (in B: %s) ---\n", sectionLabel(entry.SectionB))
			fmt.Fprintf(&b, "Content Snippet:\n```\n%s\n```\n\n", entry.Snippet)
		case KindSkipped:
			fmt.Fprintf(&b, "--- Section Skipped (from A: %s) due to missing embedding ---\n\n", sectionLabel(entry.SectionA))
		}
	}
	report := strings.TrimSpace(b.String())
	if report == "" {
		return EmptyReportFallback
	}
	return report
}

func sectionLabel(ref *SectionRef) string {
	if ref == nil {
		return "unknown"
	}
	if ref.Title != "" {
		return fmt.Sprintf("'%s' (ID: %d)", ref.Title, ref.Order)
	}
	return fmt.Sprintf("ID: %d", ref.Order)
}
