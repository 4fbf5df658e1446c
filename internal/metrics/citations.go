// Package metrics scores debate outputs: citation extraction from
// argument text and set-based precision/recall/F1 against gold
// citations.
package metrics

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// "UCC § 2-205", "U.C.C. § 2-205", "§ 90"
	sectionPattern = regexp.MustCompile(`(?i)\b([A-Z][A-Za-z.]*\.?\s*)?§+\s*([0-9]+(?:[-.][0-9A-Za-z]+)*)`)

	// "Fed. R. Evid. 403", "Fed. R. Civ. P. 12(b)(6)"
	fedRulePattern = regexp.MustCompile(`(?i)\bFed\.?\s*R\.?\s*(Evid|Civ|Crim|App)\.?\s*P?\.?\s*([0-9]+(?:\([a-z0-9]+\))*)`)

	// "Rule 403", "Rule 12(b)(6)"
	rulePattern = regexp.MustCompile(`\bRule\s+([0-9]+(?:\([a-z0-9]+\))*)`)

	// Case names: "Hadley v. Baxendale", "Marbury v. Madison"
	casePattern = regexp.MustCompile(`\b([A-Z][A-Za-z'.-]+(?:\s[A-Z][A-Za-z'.-]+)*)\s+v\.\s+([A-Z][A-Za-z'.-]+(?:\s[A-Z][A-Za-z'.-]+)*)`)

	// "Restatement (Second) of Contracts § 90" is covered by the section
	// pattern; amendments need their own match.
	amendmentPattern = regexp.MustCompile(`\b(First|Second|Third|Fourth|Fifth|Sixth|Seventh|Eighth|Ninth|Tenth|Eleventh|Fourteenth)\s+Amendment\b`)
)

// ExtractCitations pulls legal authorities out of free text and returns
// them normalized, deduplicated, and sorted.
func ExtractCitations(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	set := make(map[string]struct{})

	for _, m := range fedRulePattern.FindAllStringSubmatch(text, -1) {
		body := strings.ToLower(m[1])
		set["Fed. R. "+strings.ToUpper(body[:1])+body[1:]+". "+m[2]] = struct{}{}
	}

	// Strip federal-rule matches before the generic Rule pass so "Fed. R.
	// Evid. 403" does not also emit "Rule 403".
	stripped := fedRulePattern.ReplaceAllString(text, "")
	for _, m := range rulePattern.FindAllStringSubmatch(stripped, -1) {
		set["Rule "+m[1]] = struct{}{}
	}

	for _, m := range sectionPattern.FindAllStringSubmatch(text, -1) {
		source := strings.TrimSpace(strings.TrimRight(m[1], ". "))
		if source != "" {
			set[source+" § "+m[2]] = struct{}{}
		} else {
			set["§ "+m[2]] = struct{}{}
		}
	}

	for _, m := range casePattern.FindAllStringSubmatch(text, -1) {
		set[m[1]+" v. "+m[2]] = struct{}{}
	}

	for _, m := range amendmentPattern.FindAllStringSubmatch(text, -1) {
		set[m[1]+" Amendment"] = struct{}{}
	}

	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// CitationScore holds set-overlap metrics for one result's citations.
type CitationScore struct {
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
	PredictedCount int     `json:"predicted_count"`
	ExpectedCount  int     `json:"expected_count"`
	MatchedCount   int     `json:"matched_count"`
}

// CitationF1 scores predicted citations against expected ones. Both
// empty is a perfect match; one side empty scores zero.
func CitationF1(predicted, expected []string) CitationScore {
	if len(predicted) == 0 && len(expected) == 0 {
		return CitationScore{Precision: 1, Recall: 1, F1: 1}
	}
	if len(predicted) == 0 || len(expected) == 0 {
		return CitationScore{
			PredictedCount: len(predicted),
			ExpectedCount:  len(expected),
		}
	}

	predSet := toSet(predicted)
	expSet := toSet(expected)

	matched := 0
	for c := range predSet {
		if _, ok := expSet[c]; ok {
			matched++
		}
	}

	precision := float64(matched) / float64(len(predSet))
	recall := float64(matched) / float64(len(expSet))
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return CitationScore{
		Precision:      round4(precision),
		Recall:         round4(recall),
		F1:             round4(f1),
		PredictedCount: len(predSet),
		ExpectedCount:  len(expSet),
		MatchedCount:   matched,
	}
}

func toSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

func round4(f float64) float64 {
	return float64(int(f*10000+0.5)) / 10000
}
