package score

import (
	"regexp"
	"strings"
)

// Hit is one occurrence of a rule match inside an artifact
type Hit struct {
	Line int
}

// Rule is one named predicate in the scoring table. Deduction applies per
// hit, additively and without deduplication; sub-scores floor at 0. The
// table is data: extending it never touches the scoring loop.
type Rule struct {
	Name         string
	Dimension    Dimension
	Severity     Severity
	Deduction    int
	Message      string
	SuggestedFix string
	Check        func(path, content string) []Hit
}

const (
	// artifactSizeCeiling is the performance ceiling for one artifact
	artifactSizeCeiling = 50_000
	// fileLineCeiling is the code-quality ceiling for one file
	fileLineCeiling = 300
	// magicNumberCeiling is how many distinct magic literals a file may
	// carry before it is flagged
	magicNumberCeiling = 5
)

var (
	imgTagPattern       = regexp.MustCompile(`<img\b[^>]*>`)
	inputTagPattern     = regexp.MustCompile(`<(input|select|textarea)\b[^>]*>`)
	nonSemanticPattern  = regexp.MustCompile(`<div\b[^>]*class(Name)?="[^"]*\b(header|footer|nav|main|article)\b[^"]*"`)
	clickHandlerPattern = regexp.MustCompile(`onClick\s*=`)
	keyHandlerPattern   = regexp.MustCompile(`onKey(Down|Up|Press)\s*=`)

	secretPattern   = regexp.MustCompile(`(?i)(api[_-]?key|secret|password|token)\s*[:=]\s*["'][A-Za-z0-9+/_-]{8,}["']`)
	rawMarkupPat    = regexp.MustCompile(`dangerouslySetInnerHTML|\.innerHTML\s*=`)
	dynamicEvalPat  = regexp.MustCompile(`\beval\s*\(|new\s+Function\s*\(`)
	interpQueryPat  = regexp.MustCompile("(?i)(select|insert|update|delete)[^`\"\n]*(\\$\\{|\"\\s*\\+|'\\s*\\+)")
	configSourcePat = regexp.MustCompile(`process\.env|os\.Getenv|config\.|import\.meta\.env`)

	untypedFuncPattern = regexp.MustCompile(`\bfunction\s+\w+\s*\([^)]*\)\s*\{`)
	debugOutputPattern = regexp.MustCompile(`console\.(log|debug)\s*\(|\bprint\s*\(`)
	numberPattern      = regexp.MustCompile(`\b\d{2,}\b`)

	testPathPattern  = regexp.MustCompile(`(\.test\.|\.spec\.|_test\.)|(^|/)tests?/`)
	assertionPattern = regexp.MustCompile(`\bexpect\s*\(|\bassert[.(\s]|\.should\b`)
)

// markupLike reports whether a file can carry HTML/JSX markup.
func markupLike(path string) bool {
	for _, ext := range []string{".html", ".htm", ".jsx", ".tsx", ".vue", ".svelte"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// codeLike reports whether a file holds source code worth linting.
func codeLike(path string) bool {
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx", ".go", ".py", ".vue", ".svelte"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// lineOf returns the 1-based line number of a byte offset.
func lineOf(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}

// matchPerOccurrence returns one hit per pattern occurrence.
func matchPerOccurrence(pattern *regexp.Regexp, content string) []Hit {
	var hits []Hit
	for _, loc := range pattern.FindAllStringIndex(content, -1) {
		hits = append(hits, Hit{Line: lineOf(content, loc[0])})
	}
	return hits
}

// DefaultRules is the reference rule table, in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		// accessibility
		{
			Name:         "a11y-img-alt",
			Dimension:    DimensionAccessibility,
			Severity:     SeverityHigh,
			Deduction:    10,
			Message:      "image without alt text",
			SuggestedFix: "add a descriptive alt attribute to the image",
			Check: func(path, content string) []Hit {
				if !markupLike(path) {
					return nil
				}
				var hits []Hit
				for _, loc := range imgTagPattern.FindAllStringIndex(content, -1) {
					tag := content[loc[0]:loc[1]]
					if !strings.Contains(tag, "alt=") {
						hits = append(hits, Hit{Line: lineOf(content, loc[0])})
					}
				}
				return hits
			},
		},
		{
			Name:         "a11y-control-label",
			Dimension:    DimensionAccessibility,
			Severity:     SeverityMedium,
			Deduction:    10,
			Message:      "form control without a label",
			SuggestedFix: "associate the control with a <label> or aria-label",
			Check: func(path, content string) []Hit {
				if !markupLike(path) {
					return nil
				}
				hasLabel := strings.Contains(content, "<label")
				var hits []Hit
				for _, loc := range inputTagPattern.FindAllStringIndex(content, -1) {
					tag := content[loc[0]:loc[1]]
					if hasLabel || strings.Contains(tag, "aria-label") {
						continue
					}
					hits = append(hits, Hit{Line: lineOf(content, loc[0])})
				}
				return hits
			},
		},
		{
			Name:         "a11y-semantic-markup",
			Dimension:    DimensionAccessibility,
			Severity:     SeverityLow,
			Deduction:    10,
			Message:      "non-semantic structural markup where semantic elements apply",
			SuggestedFix: "replace the div with the matching semantic element (header, footer, nav, main)",
			Check: func(path, content string) []Hit {
				if !markupLike(path) {
					return nil
				}
				return matchPerOccurrence(nonSemanticPattern, content)
			},
		},
		{
			Name:         "a11y-key-handler",
			Dimension:    DimensionAccessibility,
			Severity:     SeverityMedium,
			Deduction:    10,
			Message:      "click handler without a paired key handler",
			SuggestedFix: "pair onClick with onKeyDown for keyboard users",
			Check: func(path, content string) []Hit {
				if !markupLike(path) {
					return nil
				}
				var hits []Hit
				for _, loc := range clickHandlerPattern.FindAllStringIndex(content, -1) {
					line := lineOf(content, loc[0])
					lineText := lineAt(content, line)
					if !keyHandlerPattern.MatchString(lineText) {
						hits = append(hits, Hit{Line: line})
					}
				}
				return hits
			},
		},

		// performance
		{
			Name:         "perf-artifact-size",
			Dimension:    DimensionPerformance,
			Severity:     SeverityMedium,
			Deduction:    8,
			Message:      "artifact exceeds the size ceiling",
			SuggestedFix: "split the artifact or move static payloads out of source",
			Check: func(path, content string) []Hit {
				if len(content) > artifactSizeCeiling {
					return []Hit{{Line: 1}}
				}
				return nil
			},
		},
		{
			Name:         "perf-img-lazy",
			Dimension:    DimensionPerformance,
			Severity:     SeverityLow,
			Deduction:    8,
			Message:      "image reference without lazy-loading",
			SuggestedFix: `add loading="lazy" to below-the-fold images`,
			Check: func(path, content string) []Hit {
				if !markupLike(path) {
					return nil
				}
				var hits []Hit
				for _, loc := range imgTagPattern.FindAllStringIndex(content, -1) {
					tag := content[loc[0]:loc[1]]
					if !strings.Contains(tag, "loading=") {
						hits = append(hits, Hit{Line: lineOf(content, loc[0])})
					}
				}
				return hits
			},
		},
		{
			Name:         "perf-list-memo",
			Dimension:    DimensionPerformance,
			Severity:     SeverityLow,
			Deduction:    8,
			Message:      "list rendering without memoization",
			SuggestedFix: "wrap list items in memo or compute the list with useMemo",
			Check: func(path, content string) []Hit {
				if !strings.HasSuffix(path, ".jsx") && !strings.HasSuffix(path, ".tsx") {
					return nil
				}
				if !strings.Contains(content, ".map(") {
					return nil
				}
				if strings.Contains(content, "useMemo") || strings.Contains(content, "memo(") {
					return nil
				}
				return matchPerOccurrence(regexp.MustCompile(`\.map\(`), content)
			},
		},

		// security
		{
			Name:         "sec-hardcoded-secret",
			Dimension:    DimensionSecurity,
			Severity:     SeverityCritical,
			Deduction:    20,
			Message:      "probable hardcoded secret not sourced from configuration",
			SuggestedFix: "read the credential from configuration or the environment",
			Check: func(path, content string) []Hit {
				var hits []Hit
				for _, loc := range secretPattern.FindAllStringIndex(content, -1) {
					line := lineOf(content, loc[0])
					if !configSourcePat.MatchString(lineAt(content, line)) {
						hits = append(hits, Hit{Line: line})
					}
				}
				return hits
			},
		},
		{
			Name:         "sec-raw-markup",
			Dimension:    DimensionSecurity,
			Severity:     SeverityHigh,
			Deduction:    15,
			Message:      "unsanitized raw-markup injection",
			SuggestedFix: "sanitize the markup or render text nodes instead",
			Check: func(path, content string) []Hit {
				return matchPerOccurrence(rawMarkupPat, content)
			},
		},
		{
			Name:         "sec-dynamic-eval",
			Dimension:    DimensionSecurity,
			Severity:     SeverityCritical,
			Deduction:    20,
			Message:      "dynamic code evaluation",
			SuggestedFix: "remove eval/new Function; use data, not code, as input",
			Check: func(path, content string) []Hit {
				return matchPerOccurrence(dynamicEvalPat, content)
			},
		},
		{
			Name:         "sec-interpolated-query",
			Dimension:    DimensionSecurity,
			Severity:     SeverityHigh,
			Deduction:    15,
			Message:      "string-interpolated query text",
			SuggestedFix: "use parameterized queries",
			Check: func(path, content string) []Hit {
				return matchPerOccurrence(interpQueryPat, content)
			},
		},

		// codeQuality
		{
			Name:         "cq-file-length",
			Dimension:    DimensionCodeQuality,
			Severity:     SeverityMedium,
			Deduction:    5,
			Message:      "file exceeds the line-count ceiling",
			SuggestedFix: "split the file along responsibility boundaries",
			Check: func(path, content string) []Hit {
				if !codeLike(path) {
					return nil
				}
				if strings.Count(content, "\n")+1 > fileLineCeiling {
					return []Hit{{Line: fileLineCeiling}}
				}
				return nil
			},
		},
		{
			Name:         "cq-untyped-function",
			Dimension:    DimensionCodeQuality,
			Severity:     SeverityLow,
			Deduction:    5,
			Message:      "function missing type annotation",
			SuggestedFix: "annotate the function's return type",
			Check: func(path, content string) []Hit {
				if !strings.HasSuffix(path, ".ts") && !strings.HasSuffix(path, ".tsx") {
					return nil
				}
				return matchPerOccurrence(untypedFuncPattern, content)
			},
		},
		{
			Name:         "cq-debug-output",
			Dimension:    DimensionCodeQuality,
			Severity:     SeverityLow,
			Deduction:    5,
			Message:      "leftover debug output",
			SuggestedFix: "remove the debug statement or route it through the logger",
			Check: func(path, content string) []Hit {
				if !codeLike(path) {
					return nil
				}
				return matchPerOccurrence(debugOutputPattern, content)
			},
		},
		{
			Name:         "cq-magic-numbers",
			Dimension:    DimensionCodeQuality,
			Severity:     SeverityLow,
			Deduction:    5,
			Message:      "excessive magic-number literals",
			SuggestedFix: "name the constants",
			Check: func(path, content string) []Hit {
				if !codeLike(path) {
					return nil
				}
				if len(numberPattern.FindAllString(content, -1)) > magicNumberCeiling {
					return []Hit{{Line: 1}}
				}
				return nil
			},
		},
	}
}

// lineAt returns the text of the 1-based line number.
func lineAt(content string, line int) string {
	lines := strings.Split(content, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}
