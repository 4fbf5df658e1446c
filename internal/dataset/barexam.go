package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	barExamRepo     = "reglab/barexam_qa"
	barExamURLTmpl  = "https://huggingface.co/datasets/%s/resolve/main/data/qa/%s.csv"
	defaultCacheDir = "data/barexam_qa"

	downloadTimeout = 5 * time.Minute
)

// BarExamQA loads the Bar Exam QA dataset from the HuggingFace hub. The
// split CSV is downloaded once and cached on disk; later loads read only
// the cache. Sampling is a deterministic prefix of the stored row order,
// so two loads with the same SampleSize return identical sequences.
type BarExamQA struct {
	Split      string // "train", "validation", or "test"
	SampleSize int    // 0 = all rows

	// HTTPClient overrides the download client, BaseURL the hub endpoint.
	// Both are test seams; zero values use the real hub.
	HTTPClient *http.Client
	BaseURL    string
}

func (d *BarExamQA) Name() string { return "barexam_qa" }

func (d *BarExamQA) Description() string {
	return "Bar Exam QA multiple-choice legal questions (" + barExamRepo + ")"
}

func (d *BarExamQA) Load(ctx context.Context) ([]Question, error) {
	if d == nil {
		return nil, errors.New("dataset: nil loader")
	}
	if ctx == nil {
		return nil, errors.New("dataset: nil context")
	}

	split := strings.ToLower(strings.TrimSpace(d.Split))
	if split == "" {
		split = "test"
	}
	switch split {
	case "train", "validation", "test":
	default:
		return nil, fmt.Errorf("dataset: unknown split %q (expected train|validation|test)", split)
	}

	path, err := d.ensureCached(ctx, split)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open cache %q: %w", path, err)
	}
	defer f.Close()

	qs, err := parseBarExamCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("dataset: parse %q: %w", path, err)
	}
	return takeFirstN(qs, d.SampleSize), nil
}

// ensureCached returns the cache path for the split, downloading it
// first when absent. The cache is never rewritten once present.
func (d *BarExamQA) ensureCached(ctx context.Context, split string) (string, error) {
	dir := strings.TrimSpace(os.Getenv("MADBENCH_DATA_DIR"))
	if dir == "" {
		dir = defaultCacheDir
	}
	path := filepath.Join(dir, split+".csv")

	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("dataset: stat cache %q: %w", path, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("dataset: create cache dir: %w", err)
	}
	if err := d.download(ctx, split, path); err != nil {
		return "", err
	}
	return path, nil
}

func (d *BarExamQA) download(ctx context.Context, split, path string) error {
	url := strings.TrimSpace(d.BaseURL)
	if url == "" {
		url = fmt.Sprintf(barExamURLTmpl, barExamRepo, split)
	} else {
		url = strings.TrimRight(url, "/") + "/" + split + ".csv"
	}

	client := d.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("dataset: build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetch %s split: %v", ErrUnavailable, split, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: fetch %s split: status %s", ErrUnavailable, split, resp.Status)
	}

	// Write through a temp file so an interrupted download never leaves a
	// truncated cache behind.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return fmt.Errorf("dataset: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: download %s split: %v", ErrUnavailable, split, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("dataset: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("dataset: move into cache: %w", err)
	}
	return nil
}

func parseBarExamCSV(ctx context.Context, r io.Reader) ([]Question, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"question", "choice_a", "choice_b", "choice_c", "choice_d", "answer"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Question
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("row %d: %w", line, err)
		}

		qText := field(row, "question")
		if qText == "" {
			continue
		}

		id := field(row, "idx")
		if id == "" {
			id = fmt.Sprintf("barexam-%d", line)
		}

		out = append(out, Question{
			ID:       id,
			Prompt:   field(row, "prompt"),
			Question: qText,
			Choices: []string{
				field(row, "choice_a"),
				field(row, "choice_b"),
				field(row, "choice_c"),
				field(row, "choice_d"),
			},
			Answer:      strings.ToUpper(field(row, "answer")),
			GoldPassage: field(row, "gold_passage"),
		})
	}
	return out, nil
}
