package score

import "fmt"

// Per-dimension thresholds below which a recommendation is emitted.
const (
	recommendTestsBelow         = 70
	recommendAccessibilityBelow = 80
	recommendPerformanceBelow   = 80
	recommendSecurityBelow      = 90
	recommendCodeQualityBelow   = 75
)

// Holistic bands for the closing recommendation.
const (
	bandStrong     = 90
	bandAcceptable = 70
)

// recommend derives prioritized guidance from the sub-scores. Order is
// fixed: security first, then tests, accessibility, performance, code
// quality, closing with the holistic line.
func recommend(d Dimensions, overall int) []string {
	var recs []string

	if d.Security < recommendSecurityBelow {
		recs = append(recs, fmt.Sprintf("security scored %d; resolve the flagged findings before shipping", d.Security))
	}
	if d.Tests < recommendTestsBelow {
		recs = append(recs, fmt.Sprintf("test coverage scored %d; generate tests with real assertions for the new features", d.Tests))
	}
	if d.Accessibility < recommendAccessibilityBelow {
		recs = append(recs, fmt.Sprintf("accessibility scored %d; fix missing alt text, labels and keyboard handlers", d.Accessibility))
	}
	if d.Performance < recommendPerformanceBelow {
		recs = append(recs, fmt.Sprintf("performance scored %d; lazy-load images and memoize list rendering", d.Performance))
	}
	if d.CodeQuality < recommendCodeQualityBelow {
		recs = append(recs, fmt.Sprintf("code quality scored %d; remove debug output and split oversized files", d.CodeQuality))
	}

	switch {
	case overall >= bandStrong:
		recs = append(recs, "output quality is strong; no structural rework needed")
	case overall >= bandAcceptable:
		recs = append(recs, "output quality is acceptable; address the items above in a follow-up pass")
	default:
		recs = append(recs, "output quality is below the acceptance bar; a retry pass is recommended")
	}
	return recs
}
