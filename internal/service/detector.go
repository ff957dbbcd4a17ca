package service

import (
	"strings"

	"github.com/insightlens/insightlens/internal/segment"
)

// detectSampleSize bounds how much of the document the detector reads;
// domain vocabulary concentrates at the front of a document.
const detectSampleSize = 8000

// minKeywordHits is the score below which detection falls back to generic.
const minKeywordHits = 2

var domainKeywords = map[segment.Domain][]string{
	segment.DomainLegal: {
		"contract", "agreement", "whereas", "hereinafter", "party", "clause",
		"indemnify", "liability", "jurisdiction", "termination", "governing law",
	},
	segment.DomainFinancial: {
		"revenue", "financial", "fiscal", "balance sheet", "income statement",
		"cash flow", "earnings", "liquidity", "shareholders", "quarterly",
	},
	segment.DomainMedical: {
		"patient", "diagnosis", "dosage", "treatment", "clinical",
		"contraindications", "adverse", "symptoms", "prescribed", "medication",
	},
}

// DetectDomain guesses a document's domain by counting keyword hits in a
// prefix of the text. Too few hits, or a tie between domains, means generic.
func DetectDomain(text string) segment.Domain {
	sample := strings.ToLower(text)
	if len(sample) > detectSampleSize {
		sample = sample[:detectSampleSize]
	}

	best := segment.DomainGeneric
	bestHits := 0
	tied := false
	for _, domain := range []segment.Domain{segment.DomainLegal, segment.DomainFinancial, segment.DomainMedical} {
		hits := 0
		for _, keyword := range domainKeywords[domain] {
			hits += strings.Count(sample, keyword)
		}
		if hits > bestHits {
			best = domain
			bestHits = hits
			tied = false
		} else if hits == bestHits && hits > 0 {
			tied = true
		}
	}
	if bestHits < minKeywordHits || tied {
		return segment.DomainGeneric
	}
	return best
}
