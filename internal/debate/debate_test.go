package debate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/arbiterlab/madbench/internal/dataset"
	"github.com/arbiterlab/madbench/internal/llm"
)

// scriptedProvider returns canned responses in call order.
type scriptedProvider struct {
	responses []string
	calls     int
	err       error
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, _ *llm.Request) (*llm.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.calls >= len(p.responses) {
		return nil, fmt.Errorf("scripted: unexpected call %d", p.calls+1)
	}
	text := p.responses[p.calls]
	p.calls++
	return &llm.Response{
		Text:      text,
		Usage:     llm.Usage{InputTokens: 10, OutputTokens: 5},
		LatencyMs: 2,
	}, nil
}

func testQuestion() *dataset.Question {
	return &dataset.Question{
		ID:       "q1",
		Question: "Which rule governs firm offers?",
		Choices:  []string{"UCC 2-205", "Common law", "Statute of frauds", "Parol evidence"},
		Answer:   "A",
	}
}

func opening(position string) string {
	return fmt.Sprintf(`{"position": %q, "argument": "arg for %s", "citations": ["UCC § 2-205"]}`, position, position)
}

func rebuttal() string {
	return `{"rebuttal": "my opponent is wrong", "counterarguments": ["c1"], "citations": ["§ 90"]}`
}

func verdict(decision string) string {
	return fmt.Sprintf(`{"rationale": "r", "winner": "debater_x", "decision": %q, "synthesis": "s"}`, decision)
}

func TestEngineConsensusInOneRound(t *testing.T) {
	t.Parallel()

	p := &scriptedProvider{responses: []string{opening("A"), opening("A")}}
	out, err := NewEngine(p).Run(context.Background(), testQuestion())
	if err != nil {
		t.Fatalf("Run: unexpected error: %v", err)
	}

	if out.State != StateConsensus {
		t.Fatalf("state: got %q want %q", out.State, StateConsensus)
	}
	if out.Rounds != 1 {
		t.Fatalf("rounds: got %d want 1", out.Rounds)
	}
	if out.FinalAnswer != "A" {
		t.Fatalf("final answer: got %q want %q", out.FinalAnswer, "A")
	}
	if out.Transcript.Verdict != nil {
		t.Fatalf("consensus run should not reach the judge, got verdict %+v", out.Transcript.Verdict)
	}
	if p.calls != 2 {
		t.Fatalf("provider calls: got %d want 2", p.calls)
	}
	if out.Tokens != 30 {
		t.Fatalf("tokens: got %d want 30", out.Tokens)
	}
}

func TestEngineDisagreementGoesToJudge(t *testing.T) {
	t.Parallel()

	p := &scriptedProvider{responses: []string{
		opening("A"),
		opening("b"), // lowercase positions normalize before comparison
		rebuttal(),
		rebuttal(),
		verdict("B"),
	}}
	out, err := NewEngine(p).Run(context.Background(), testQuestion())
	if err != nil {
		t.Fatalf("Run: unexpected error: %v", err)
	}

	if out.State != StateConsensus {
		t.Fatalf("state: got %q want %q", out.State, StateConsensus)
	}
	if out.Rounds != 2 {
		t.Fatalf("rounds: got %d want 2", out.Rounds)
	}
	if out.FinalAnswer != "B" {
		t.Fatalf("final answer: got %q want %q", out.FinalAnswer, "B")
	}
	if out.Transcript.RebuttalX == nil || out.Transcript.RebuttalY == nil {
		t.Fatalf("expected both rebuttals, got %+v", out.Transcript)
	}
	if out.Transcript.Verdict == nil || out.Transcript.Verdict.Winner != "debater_x" {
		t.Fatalf("verdict: got %+v", out.Transcript.Verdict)
	}
	if p.calls != 5 {
		t.Fatalf("provider calls: got %d want 5", p.calls)
	}
}

func TestEngineInvalidOpeningPosition(t *testing.T) {
	t.Parallel()

	p := &scriptedProvider{responses: []string{
		`{"position": "E", "argument": "out of range"}`,
	}}
	out, err := NewEngine(p).Run(context.Background(), testQuestion())
	if err == nil {
		t.Fatal("Run: expected error for invalid position")
	}
	if out.State != StateFailed {
		t.Fatalf("state: got %q want %q", out.State, StateFailed)
	}
}

func TestEngineInvalidJudgeDecision(t *testing.T) {
	t.Parallel()

	p := &scriptedProvider{responses: []string{
		opening("A"),
		opening("B"),
		rebuttal(),
		rebuttal(),
		verdict("Z"),
	}}
	out, err := NewEngine(p).Run(context.Background(), testQuestion())
	if err == nil {
		t.Fatal("Run: expected error for invalid judge decision")
	}
	if out.State != StateFailed {
		t.Fatalf("state: got %q want %q", out.State, StateFailed)
	}
	// The transcript up to the failure is preserved for the results file.
	if out.Transcript.RebuttalY == nil {
		t.Fatalf("expected rebuttals before the failing verdict, got %+v", out.Transcript)
	}
}

func TestEngineProviderErrorPropagates(t *testing.T) {
	t.Parallel()

	want := errors.New("boom")
	p := &scriptedProvider{err: want}
	out, err := NewEngine(p).Run(context.Background(), testQuestion())
	if !errors.Is(err, want) {
		t.Fatalf("Run: got error %v want %v", err, want)
	}
	if out.State != StateFailed {
		t.Fatalf("state: got %q want %q", out.State, StateFailed)
	}
}

func TestEngineRejectsBadInput(t *testing.T) {
	t.Parallel()

	e := NewEngine(&scriptedProvider{})

	if _, err := e.Run(context.Background(), nil); err == nil {
		t.Fatal("Run(nil question): expected error")
	}
	if _, err := e.Run(context.Background(), &dataset.Question{ID: "q"}); err == nil {
		t.Fatal("Run(no choices): expected error")
	}

	var nilEngine *Engine
	if _, err := nilEngine.Run(context.Background(), testQuestion()); err == nil {
		t.Fatal("Run on nil engine: expected error")
	}
}
