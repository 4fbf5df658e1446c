package runner

import (
	"time"

	"github.com/arbiterlab/madbench/internal/debate"
	"github.com/arbiterlab/madbench/internal/metrics"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Config defines one experiment run.
type Config struct {
	Model       string
	JudgeModel  string
	Concurrency int
	Timeout     time.Duration // per-question budget; 0 = none
	ResultsDir  string
	DryRun      bool // skip the leaderboard write
}

// ExperimentResult is the per-question record serialized into the run's
// results file.
type ExperimentResult struct {
	QuestionID  string                `json:"question_id"`
	Question    string                `json:"question"`
	Choices     []string              `json:"choices"`
	GoldAnswer  string                `json:"gold_answer,omitempty"`
	FinalAnswer string                `json:"final_answer,omitempty"`
	Correct     bool                  `json:"correct"`
	Status      Status                `json:"status"`
	Rounds      int                   `json:"rounds"`
	Transcript  debate.Transcript     `json:"transcript"`
	Citations   []string              `json:"citations,omitempty"`
	Citation    metrics.CitationScore `json:"citation_score"`
	JudgeScore  *metrics.JudgeScore   `json:"judge_score,omitempty"`
	Error       string                `json:"error,omitempty"`
	LatencyMs   int64                 `json:"latency_ms"`
	Tokens      int                   `json:"tokens"`
}

// Report is the run-level output: a summary header plus the ordered
// result records. Result order always matches sampling order.
type Report struct {
	RunID       string             `json:"run_id"`
	Dataset     string             `json:"dataset"`
	Model       string             `json:"model"`
	JudgeModel  string             `json:"judge_model,omitempty"`
	SampleSize  int                `json:"sample_size"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	Accuracy    float64            `json:"accuracy"`
	AvgRounds   float64            `json:"avg_rounds"`
	Failed      int                `json:"failed"`
	Interrupted bool               `json:"interrupted,omitempty"`
	Results     []ExperimentResult `json:"results"`
}
