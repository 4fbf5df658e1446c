package dataset

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the dataset could not be fetched and no
// local cache exists.
var ErrUnavailable = errors.New("dataset: unavailable (no network and no cache)")

type Loader interface {
	Name() string
	Description() string
	Load(ctx context.Context) ([]Question, error)
}

// Question is one record of a QA dataset. Records are immutable once
// loaded; the runner only reads them.
type Question struct {
	ID          string
	Prompt      string
	Question    string
	Choices     []string
	Answer      string
	GoldPassage string
}

// FullText joins the dataset's context prompt with the question body the
// way the original prompts expect it.
func (q *Question) FullText() string {
	if q == nil {
		return ""
	}
	if q.Prompt == "" {
		return q.Question
	}
	return q.Prompt + "\n\n" + q.Question
}

func takeFirstN[T any](in []T, n int) []T {
	if n <= 0 || n >= len(in) {
		return in
	}
	out := make([]T, 0, n)
	return append(out, in[:n]...)
}
