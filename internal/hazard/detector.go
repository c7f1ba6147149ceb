// Package hazard classifies free-text downtime reasons by keyword severity.
package hazard

import (
	"strings"

	"mill-data/internal/domain"
)

// Keywords holds the three severity tiers of Cyrillic keyword substrings.
// Lists are injected at construction so tests run with synthetic keywords.
type Keywords struct {
	High   []string `yaml:"high"`
	Medium []string `yaml:"medium"`
	Low    []string `yaml:"low"`
}

// Detector scans free text against the configured keyword tiers.
type Detector struct {
	keywords Keywords
}

func NewDetector(keywords Keywords) *Detector {
	return &Detector{keywords: keywords}
}

// Detect applies the strict tiered severity policy:
//  1. high keywords are scanned in list order; the first match returns a
//     single hazard and stops all further scanning;
//  2. with no high match, all medium keywords are scanned, one entry per
//     distinct matching keyword; any medium match skips the low tier;
//  3. only when neither high nor medium matched, low keywords are scanned
//     the same way.
//
// A text can therefore yield multiple entries only within a single tier.
func (d *Detector) Detect(text string) []domain.DetectedHazard {
	lower := strings.ToLower(text)

	for _, kw := range d.keywords.High {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return []domain.DetectedHazard{{
				Description:    text,
				Severity:       domain.SeverityHigh,
				MatchedKeyword: kw,
			}}
		}
	}

	if found := scanTier(text, lower, d.keywords.Medium, domain.SeverityMedium); len(found) > 0 {
		return found
	}
	return scanTier(text, lower, d.keywords.Low, domain.SeverityLow)
}

func scanTier(text, lower string, keywords []string, severity string) []domain.DetectedHazard {
	var found []domain.DetectedHazard
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			found = append(found, domain.DetectedHazard{
				Description:    text,
				Severity:       severity,
				MatchedKeyword: kw,
			})
		}
	}
	return found
}
