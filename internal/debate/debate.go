// Package debate runs the multi-agent debate protocol over a single
// question: two debater agents argue answer positions across at most two
// rounds and a judge agent settles disagreements.
package debate

import (
	"context"
	"errors"
	"fmt"

	"github.com/arbiterlab/madbench/internal/dataset"
	"github.com/arbiterlab/madbench/internal/llm"
)

// State tracks a question's progress through the debate.
type State string

const (
	StatePending   State = "round_pending"
	StateRoundDone State = "round_complete"
	StateConsensus State = "consensus_reached"
	StateFailed    State = "failed"
)

// Opening is a debater's first-round output.
type Opening struct {
	Position  string   `json:"position"`
	Argument  string   `json:"argument"`
	Citations []string `json:"citations,omitempty"`
}

// Rebuttal is a debater's second-round output.
type Rebuttal struct {
	Rebuttal         string   `json:"rebuttal"`
	Counterarguments []string `json:"counterarguments,omitempty"`
	Citations        []string `json:"citations,omitempty"`
}

// Verdict is the judge's decision over a full transcript.
type Verdict struct {
	Rationale string `json:"rationale"`
	Winner    string `json:"winner"`
	Decision  string `json:"decision"`
	Synthesis string `json:"synthesis"`
}

// Transcript holds everything produced during one question's debate.
type Transcript struct {
	OpeningX  *Opening  `json:"opening_x,omitempty"`
	OpeningY  *Opening  `json:"opening_y,omitempty"`
	RebuttalX *Rebuttal `json:"rebuttal_x,omitempty"`
	RebuttalY *Rebuttal `json:"rebuttal_y,omitempty"`
	Verdict   *Verdict  `json:"verdict,omitempty"`
}

// Outcome is the debate's final product for one question.
type Outcome struct {
	State       State
	Rounds      int
	FinalAnswer string
	Transcript  Transcript
	Tokens      int
	LatencyMs   int64
}

// Engine drives debates through a completion provider. MaxTokens caps
// each agent turn; the per-turn budgets mirror the original harness.
type Engine struct {
	Provider llm.Provider

	openingTokens  int
	rebuttalTokens int
	judgeTokens    int
}

func NewEngine(provider llm.Provider) *Engine {
	return &Engine{
		Provider:       provider,
		openingTokens:  750,
		rebuttalTokens: 650,
		judgeTokens:    800,
	}
}

// Run executes the debate for one question.
//
// Round 1: both debaters choose a position freely and argue for it. If
// they agree, that position is the final answer (consensus, one round).
// Round 2: on disagreement, each debater rebuts the other's opening and
// the judge decides. The judge's decision is the final answer.
func (e *Engine) Run(ctx context.Context, q *dataset.Question) (*Outcome, error) {
	if e == nil || e.Provider == nil {
		return nil, errors.New("debate: nil engine")
	}
	if ctx == nil {
		return nil, errors.New("debate: nil context")
	}
	if q == nil {
		return nil, errors.New("debate: nil question")
	}
	if len(q.Choices) == 0 {
		return nil, fmt.Errorf("debate: question %s has no choices", q.ID)
	}

	out := &Outcome{State: StatePending}
	question := q.FullText()

	openingX, err := e.opening(ctx, question, q.Choices, out)
	if err != nil {
		out.State = StateFailed
		return out, err
	}
	out.Transcript.OpeningX = openingX

	openingY, err := e.opening(ctx, question, q.Choices, out)
	if err != nil {
		out.State = StateFailed
		return out, err
	}
	out.Transcript.OpeningY = openingY

	out.Rounds = 1
	if openingX.Position == openingY.Position {
		out.State = StateConsensus
		out.FinalAnswer = openingX.Position
		return out, nil
	}
	out.State = StateRoundDone

	rebuttalX, err := e.rebuttal(ctx, question, openingX, openingY, out)
	if err != nil {
		out.State = StateFailed
		return out, err
	}
	out.Transcript.RebuttalX = rebuttalX

	rebuttalY, err := e.rebuttal(ctx, question, openingY, openingX, out)
	if err != nil {
		out.State = StateFailed
		return out, err
	}
	out.Transcript.RebuttalY = rebuttalY

	verdict, err := e.judge(ctx, question, q.Choices, &out.Transcript, out)
	if err != nil {
		out.State = StateFailed
		return out, err
	}
	out.Transcript.Verdict = verdict

	out.Rounds = 2
	out.State = StateConsensus
	out.FinalAnswer = verdict.Decision
	return out, nil
}

func (e *Engine) opening(ctx context.Context, question string, choices []string, out *Outcome) (*Opening, error) {
	resp, err := e.complete(ctx, openingPrompt(question, choices), e.openingTokens, out)
	if err != nil {
		return nil, err
	}

	var opening Opening
	if err := decodeEnvelope(resp.Text, &opening); err != nil {
		return nil, err
	}
	if opening.Argument == "" {
		return nil, errors.New("debate: opening missing argument")
	}
	if !validPosition(opening.Position) {
		return nil, fmt.Errorf("debate: invalid opening position %q", opening.Position)
	}
	opening.Position = normalizePosition(opening.Position)
	return &opening, nil
}

func (e *Engine) rebuttal(ctx context.Context, question string, mine, opponent *Opening, out *Outcome) (*Rebuttal, error) {
	resp, err := e.complete(ctx, rebuttalPrompt(question, mine.Position, mine.Argument, opponent), e.rebuttalTokens, out)
	if err != nil {
		return nil, err
	}

	var rebuttal Rebuttal
	if err := decodeEnvelope(resp.Text, &rebuttal); err != nil {
		return nil, err
	}
	if rebuttal.Rebuttal == "" {
		return nil, errors.New("debate: rebuttal missing rebuttal text")
	}
	return &rebuttal, nil
}

func (e *Engine) judge(ctx context.Context, question string, choices []string, t *Transcript, out *Outcome) (*Verdict, error) {
	resp, err := e.complete(ctx, judgePrompt(question, choices, t), e.judgeTokens, out)
	if err != nil {
		return nil, err
	}

	var verdict Verdict
	if err := decodeEnvelope(resp.Text, &verdict); err != nil {
		return nil, err
	}
	if !validPosition(verdict.Decision) {
		return nil, fmt.Errorf("debate: invalid judge decision %q", verdict.Decision)
	}
	verdict.Decision = normalizePosition(verdict.Decision)
	return &verdict, nil
}

func (e *Engine) complete(ctx context.Context, prompt string, maxTokens int, out *Outcome) (*llm.Response, error) {
	resp, err := e.Provider.Complete(ctx, &llm.Request{
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
		JSONMode:    true,
	})
	if resp != nil && out != nil {
		out.Tokens += resp.Usage.InputTokens + resp.Usage.OutputTokens
		out.LatencyMs += resp.LatencyMs
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
