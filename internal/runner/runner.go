// Package runner drives one experiment batch: sample the dataset, debate
// every question on a bounded worker pool, and persist the ordered
// results plus a leaderboard summary.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/arbiterlab/madbench/internal/dataset"
	"github.com/arbiterlab/madbench/internal/debate"
	"github.com/arbiterlab/madbench/internal/leaderboard"
	"github.com/arbiterlab/madbench/internal/llm"
	"github.com/arbiterlab/madbench/internal/metrics"
)

type Runner struct {
	Loader dataset.Loader
	Engine *debate.Engine
	Scorer *metrics.Scorer    // optional independent grading of winning arguments
	Store  *leaderboard.Store // optional
	Config Config
}

// Run executes the batch. A per-question terminal completion error marks
// that question failed and the batch continues; auth failures and
// model-not-found abort because every later question would fail the same
// way. On cancellation the partial report is still written before Run
// returns ctx's error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r == nil {
		return nil, errors.New("runner: nil runner")
	}
	if ctx == nil {
		return nil, errors.New("runner: nil context")
	}
	if r.Loader == nil {
		return nil, errors.New("runner: nil dataset loader")
	}
	if r.Engine == nil {
		return nil, errors.New("runner: nil debate engine")
	}

	started := time.Now().UTC()

	qs, err := r.Loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, errors.New("runner: empty dataset sample")
	}

	report := &Report{
		RunID:      "run_" + started.Format("20060102T150405Z"),
		Dataset:    strings.TrimSpace(r.Loader.Name()),
		Model:      strings.TrimSpace(r.Config.Model),
		JudgeModel: strings.TrimSpace(r.Config.JudgeModel),
		SampleSize: len(qs),
		StartedAt:  started,
	}

	results, runErr := r.evaluate(ctx, qs)
	report.Results = results
	report.FinishedAt = time.Now().UTC()
	report.Interrupted = errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded)
	summarize(report)

	if _, werr := WriteReport(r.Config.ResultsDir, report); werr != nil {
		if runErr != nil {
			return report, fmt.Errorf("runner: %v (and write results: %w)", runErr, werr)
		}
		return report, werr
	}

	if r.Store != nil && !r.Config.DryRun {
		entry := &leaderboard.Entry{
			RunID:      report.RunID,
			Dataset:    report.Dataset,
			Model:      report.Model,
			JudgeModel: report.JudgeModel,
			SampleSize: report.SampleSize,
			Accuracy:   report.Accuracy,
			AvgRounds:  report.AvgRounds,
			Failed:     report.Failed,
			DurationMs: report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
			CreatedAt:  report.FinishedAt,
		}
		// Save under a fresh context: the run context may already be
		// cancelled and the partial summary still belongs in the store.
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if serr := r.Store.Save(saveCtx, entry); serr != nil && runErr == nil {
			runErr = serr
		}
	}

	return report, runErr
}

// evaluate runs the debate for every question on Config.Concurrency
// workers. Results land in sampling order regardless of worker
// interleaving. The returned error is the first fatal (batch-aborting)
// condition, or nil.
func (r *Runner) evaluate(ctx context.Context, qs []dataset.Question) ([]ExperimentResult, error) {
	concurrency := r.Config.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(qs) {
		concurrency = len(qs)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		fatalErr error
	)
	abort := func(err error) {
		mu.Lock()
		if fatalErr == nil {
			fatalErr = err
		}
		mu.Unlock()
		cancel()
	}

	results := make([]ExperimentResult, len(qs))
	evaluated := make([]bool, len(qs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if runCtx.Err() != nil {
					return
				}
				res, fatal := r.evaluateOne(runCtx, &qs[i])
				results[i] = res
				evaluated[i] = true
				if fatal != nil {
					abort(fatal)
					return
				}
			}
		}()
	}

	for i := range qs {
		select {
		case jobs <- i:
		case <-runCtx.Done():
		}
		if runCtx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	// Keep only the prefix of questions that were actually evaluated so a
	// cancelled run reports exactly what it gathered, still in order.
	out := make([]ExperimentResult, 0, len(qs))
	for i := range results {
		if evaluated[i] {
			out = append(out, results[i])
		}
	}

	mu.Lock()
	err := fatalErr
	mu.Unlock()
	if err == nil {
		err = ctx.Err()
	}
	return out, err
}

// evaluateOne produces the result record for one question. The second
// return value is non-nil only for batch-aborting conditions.
func (r *Runner) evaluateOne(ctx context.Context, q *dataset.Question) (ExperimentResult, error) {
	res := ExperimentResult{
		QuestionID: q.ID,
		Question:   q.Question,
		Choices:    q.Choices,
		GoldAnswer: q.Answer,
	}

	qCtx := ctx
	if r.Config.Timeout > 0 {
		var cancel context.CancelFunc
		qCtx, cancel = context.WithTimeout(ctx, r.Config.Timeout)
		defer cancel()
	}

	outcome, err := r.Engine.Run(qCtx, q)
	if outcome != nil {
		res.Rounds = outcome.Rounds
		res.Transcript = outcome.Transcript
		res.Tokens = outcome.Tokens
		res.LatencyMs = outcome.LatencyMs
	}

	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()

		if errors.Is(err, llm.ErrAuth) {
			return res, err
		}
		var invalid *llm.InvalidRequestError
		if errors.As(err, &invalid) && invalid.ModelNotFound() {
			return res, err
		}
		// Question-level timeouts are local failures; cancellation of the
		// parent context aborts the batch.
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, nil
	}

	res.Status = StatusSuccess
	res.FinalAnswer = outcome.FinalAnswer
	res.Correct = res.FinalAnswer != "" && res.FinalAnswer == q.Answer

	res.Citations = transcriptCitations(&outcome.Transcript)
	res.Citation = metrics.CitationF1(res.Citations, metrics.ExtractCitations(q.GoldPassage))

	if r.Scorer != nil {
		if arg := winningArgument(outcome); arg != "" {
			score, serr := r.Scorer.Score(qCtx, q.FullText(), q.GoldPassage, arg)
			if serr != nil {
				// Grading is supplementary: a scorer failure never fails the
				// question, but auth errors still abort the batch.
				if errors.Is(serr, llm.ErrAuth) {
					return res, serr
				}
			} else {
				res.JudgeScore = score
			}
		}
	}
	return res, nil
}

// winningArgument picks the text the scorer should grade: the judge's
// synthesis when there was a verdict, otherwise the argument both agents
// converged on.
func winningArgument(o *debate.Outcome) string {
	if o == nil {
		return ""
	}
	t := &o.Transcript
	if t.Verdict != nil {
		if s := strings.TrimSpace(t.Verdict.Synthesis); s != "" {
			return s
		}
		switch t.Verdict.Winner {
		case "debater_y":
			if t.OpeningY != nil {
				return t.OpeningY.Argument
			}
		default:
			if t.OpeningX != nil {
				return t.OpeningX.Argument
			}
		}
	}
	if t.OpeningX != nil {
		return t.OpeningX.Argument
	}
	return ""
}

// transcriptCitations collects the distinct citations every agent
// offered during the debate.
func transcriptCitations(t *debate.Transcript) []string {
	if t == nil {
		return nil
	}

	var all []string
	for _, o := range []*debate.Opening{t.OpeningX, t.OpeningY} {
		if o != nil {
			all = append(all, o.Citations...)
		}
	}
	for _, rb := range []*debate.Rebuttal{t.RebuttalX, t.RebuttalY} {
		if rb != nil {
			all = append(all, rb.Citations...)
		}
	}

	seen := make(map[string]struct{}, len(all))
	out := make([]string, 0, len(all))
	for _, c := range all {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func summarize(report *Report) {
	if report == nil {
		return
	}

	var correct, answered, failed, roundSum int
	for i := range report.Results {
		res := &report.Results[i]
		switch res.Status {
		case StatusFailed:
			failed++
		default:
			answered++
			roundSum += res.Rounds
			if res.Correct {
				correct++
			}
		}
	}

	report.Failed = failed
	if answered > 0 {
		report.Accuracy = float64(correct) / float64(answered)
		report.AvgRounds = float64(roundSum) / float64(answered)
	}
}
