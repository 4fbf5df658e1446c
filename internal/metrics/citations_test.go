package metrics

import (
	"reflect"
	"testing"
)

func TestExtractCitations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty text",
			text: "   ",
			want: nil,
		},
		{
			name: "no authorities",
			text: "The defendant clearly breached the agreement.",
			want: nil,
		},
		{
			name: "section with source",
			text: "Under UCC § 2-205, a firm offer is irrevocable.",
			want: []string{"UCC § 2-205"},
		},
		{
			name: "bare section",
			text: "Promissory estoppel under § 90 applies here.",
			want: []string{"§ 90"},
		},
		{
			name: "federal rule does not double as generic rule",
			text: "Fed. R. Evid. 403 permits exclusion.",
			want: []string{"Fed. R. Evid. 403"},
		},
		{
			name: "generic rule",
			text: "A motion under Rule 12(b)(6) tests the pleadings.",
			want: []string{"Rule 12(b)(6)"},
		},
		{
			name: "case name",
			text: "As held in Hadley v. Baxendale, damages must be foreseeable.",
			want: []string{"Hadley v. Baxendale"},
		},
		{
			name: "amendment",
			text: "The Fourth Amendment bars unreasonable searches.",
			want: []string{"Fourth Amendment"},
		},
		{
			name: "mixed authorities sorted and deduplicated",
			text: "Marbury v. Madison controls, as does UCC § 2-205, and again UCC § 2-205. " +
				"The Fifth Amendment and Fed. R. Civ. P. 56 also apply.",
			want: []string{
				"Fed. R. Civ. 56",
				"Fifth Amendment",
				"Marbury v. Madison",
				"UCC § 2-205",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractCitations(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExtractCitations(%q): got %v want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCitationF1(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		predicted []string
		expected  []string
		want      CitationScore
	}{
		{
			name: "both empty is perfect",
			want: CitationScore{Precision: 1, Recall: 1, F1: 1},
		},
		{
			name:      "predicted empty scores zero",
			expected:  []string{"§ 90"},
			want:      CitationScore{ExpectedCount: 1},
		},
		{
			name:      "expected empty scores zero",
			predicted: []string{"§ 90"},
			want:      CitationScore{PredictedCount: 1},
		},
		{
			name:      "exact match",
			predicted: []string{"UCC § 2-205", "Hadley v. Baxendale"},
			expected:  []string{"Hadley v. Baxendale", "UCC § 2-205"},
			want: CitationScore{
				Precision: 1, Recall: 1, F1: 1,
				PredictedCount: 2, ExpectedCount: 2, MatchedCount: 2,
			},
		},
		{
			name:      "partial overlap",
			predicted: []string{"UCC § 2-205", "Rule 403"},
			expected:  []string{"UCC § 2-205", "§ 90"},
			want: CitationScore{
				Precision: 0.5, Recall: 0.5, F1: 0.5,
				PredictedCount: 2, ExpectedCount: 2, MatchedCount: 1,
			},
		},
		{
			name:      "duplicates collapse before scoring",
			predicted: []string{"§ 90", "§ 90", " § 90 "},
			expected:  []string{"§ 90"},
			want: CitationScore{
				Precision: 1, Recall: 1, F1: 1,
				PredictedCount: 1, ExpectedCount: 1, MatchedCount: 1,
			},
		},
		{
			name:      "no overlap",
			predicted: []string{"Rule 403"},
			expected:  []string{"§ 90"},
			want: CitationScore{
				PredictedCount: 1, ExpectedCount: 1,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CitationF1(tt.predicted, tt.expected)
			if got != tt.want {
				t.Fatalf("CitationF1(%v, %v): got %+v want %+v", tt.predicted, tt.expected, got, tt.want)
			}
		})
	}
}
