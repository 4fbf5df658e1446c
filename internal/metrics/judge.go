package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/arbiterlab/madbench/internal/llm"
)

// Scorer grades a debate's winning argument against the question's gold
// passage with an independent model. The scoring model is deliberately a
// different family than the experiment model to avoid self-preference
// bias.
type Scorer struct {
	Provider llm.Provider
}

// JudgeScore is the scorer's structured grade.
type JudgeScore struct {
	Correctness   float64 `json:"correctness"` // 0-4
	Reasoning     float64 `json:"reasoning"`   // 0-3
	Citations     float64 `json:"citations"`   // 0-4
	Total         float64 `json:"total"`       // 0-11
	Normalized    float64 `json:"normalized"`  // total/11
	Justification string  `json:"justification,omitempty"`
}

const scorerMaxTokens = 500

// Score evaluates the candidate argument. Empty inputs score zero
// without a network call.
func (s *Scorer) Score(ctx context.Context, question, reference, candidate string) (*JudgeScore, error) {
	if s == nil || s.Provider == nil {
		return nil, errors.New("metrics: nil scorer")
	}
	if ctx == nil {
		return nil, errors.New("metrics: nil context")
	}
	if strings.TrimSpace(reference) == "" || strings.TrimSpace(candidate) == "" {
		return &JudgeScore{Justification: "empty candidate or reference"}, nil
	}

	resp, err := s.Provider.Complete(ctx, &llm.Request{
		Messages:    []llm.Message{{Role: "user", Content: scorerPrompt(question, reference, candidate)}},
		MaxTokens:   scorerMaxTokens,
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	var score JudgeScore
	if err := decodeScore(resp.Text, &score); err != nil {
		return nil, err
	}

	score.Correctness = clamp(score.Correctness, 0, 4)
	score.Reasoning = clamp(score.Reasoning, 0, 3)
	score.Citations = clamp(score.Citations, 0, 4)
	score.Total = score.Correctness + score.Reasoning + score.Citations
	score.Normalized = round4(score.Total / 11.0)
	return &score, nil
}

func scorerPrompt(question, reference, candidate string) string {
	return fmt.Sprintf(`You are an expert evaluator of legal reasoning.

<task>
Grade the candidate answer against the reference passage for the question below.
</task>

<question>
%s
</question>

<reference_answer>
%s
</reference_answer>

<candidate_answer>
%s
</candidate_answer>

<evaluation_criteria>
1. LEGAL CORRECTNESS (0-4): 0 = wrong or irrelevant, 4 = correct, complete, and exceptionally well grounded.
2. LEGAL REASONING (0-3): 0 = incoherent, 3 = excellent structured reasoning.
3. LEGAL CITATIONS (0-4): 0 = none or entirely wrong, 4 = complete and precise.
</evaluation_criteria>

Return ONLY a valid JSON object:
{
  "correctness": <0-4>,
  "reasoning": <0-3>,
  "citations": <0-4>,
  "justification": "<at most two sentences>"
}`, strings.TrimSpace(question), strings.TrimSpace(reference), strings.TrimSpace(candidate))
}

func decodeScore(text string, out *JudgeScore) error {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "{"); i > 0 {
		text = text[i:]
	}
	if i := strings.LastIndex(text, "}"); i >= 0 {
		text = text[:i+1]
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("metrics: parse judge score: %w", err)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
