package segment

import (
	"regexp"
	"strings"
)

type Domain string

const (
	DomainLegal     Domain = "legal"
	DomainFinancial Domain = "financial"
	DomainMedical   Domain = "medical"
	DomainGeneric   Domain = "generic"
)

// ParseDomain maps a free-form hint to a known domain. Unknown hints fall
// back to generic.
func ParseDomain(hint string) Domain {
	switch Domain(strings.ToLower(strings.TrimSpace(hint))) {
	case DomainLegal:
		return DomainLegal
	case DomainFinancial:
		return DomainFinancial
	case DomainMedical:
		return DomainMedical
	default:
		return DomainGeneric
	}
}

// Profile holds the per-domain segmentation configuration: the heading
// patterns that open new chunks, the chunk size cap in characters, and the
// trailing overlap window used when a chunk has to be cut without a
// structural boundary.
type Profile struct {
	Domain       Domain
	Patterns     []*regexp.Regexp
	MaxChunkSize int
	Overlap      int
}

// Patterns shared by every domain: markdown headings, numbered and roman
// section markers, common report headings.
var basePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+\S.*$`),
	regexp.MustCompile(`(?m)^[ \t]*\d+(?:\.\d+)*\.[ \t]+\S.*$`),
	regexp.MustCompile(`(?m)^[ \t]*[IVXLCDM]+\.[ \t]+\S.*$`),
	regexp.MustCompile(`(?mi)^[ \t]*(?:executive summary|introduction|background|overview|findings|discussion|conclusion|appendix(?:[ \t]+[A-Z0-9]+)?)[ \t]*:?[ \t]*\r?$`),
}

var legalPatterns = append([]*regexp.Regexp{
	regexp.MustCompile(`(?mi)^[ \t]*article[ \t]+(?:[IVXLCDM]+|\d+)\.?[ \t]*\S?.*$`),
	regexp.MustCompile(`(?mi)^[ \t]*section[ \t]+\d+(?:\.\d+)*\.?.*$`),
	regexp.MustCompile(`(?mi)^[ \t]*(?:chapter|clause|exhibit|schedule)[ \t]+\S+.*$`),
	regexp.MustCompile(`(?mi)^[ \t]*(?:whereas|now,?[ \t]+therefore)\b.*$`),
}, basePatterns...)

var financialPatterns = append([]*regexp.Regexp{
	regexp.MustCompile(`(?mi)^[ \t]*(?:item|part)[ \t]+\d+[A-Z]?\.?[ \t]*.*$`),
	regexp.MustCompile(`(?mi)^[ \t]*(?:management'?s discussion and analysis|results of operations|liquidity and capital resources|risk factors|balance sheets?|income statements?|statements? of cash flows?|notes to (?:the )?(?:consolidated )?financial statements)[ \t]*:?[ \t]*\r?$`),
}, basePatterns...)

var medicalPatterns = append([]*regexp.Regexp{
	regexp.MustCompile(`(?mi)^[ \t]*(?:indications(?: and usage)?|dosage(?: and administration)?|contraindications|warnings(?: and precautions)?|adverse (?:reactions|events)|clinical (?:pharmacology|studies)|patient history|medications?|diagnosis|treatment plan)[ \t]*:?[ \t]*\r?$`),
}, basePatterns...)

var profiles = map[Domain]Profile{
	DomainLegal:     {Domain: DomainLegal, Patterns: legalPatterns, MaxChunkSize: 800, Overlap: 200},
	DomainFinancial: {Domain: DomainFinancial, Patterns: financialPatterns, MaxChunkSize: 1200, Overlap: 200},
	DomainMedical:   {Domain: DomainMedical, Patterns: medicalPatterns, MaxChunkSize: 1000, Overlap: 200},
	DomainGeneric:   {Domain: DomainGeneric, Patterns: basePatterns, MaxChunkSize: 1000, Overlap: 200},
}

// ProfileFor returns the segmentation profile for a domain. Unknown domains
// get the generic profile.
func ProfileFor(domain Domain) Profile {
	if p, ok := profiles[domain]; ok {
		return p
	}
	return profiles[DomainGeneric]
}
