package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WriteReport serializes the report to <dir>/<run_id>.json and returns
// the written path.
func WriteReport(dir string, report *Report) (string, error) {
	if report == nil {
		return "", errors.New("runner: nil report")
	}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "results"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("runner: create results dir: %w", err)
	}

	path := filepath.Join(dir, report.RunID+".json")
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("runner: encode report: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("runner: write report: %w", err)
	}
	return path, nil
}

// ReadReport parses a previously written results file.
func ReadReport(path string) (*Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runner: read report %q: %w", path, err)
	}

	var report Report
	if err := json.Unmarshal(b, &report); err != nil {
		return nil, fmt.Errorf("runner: parse report %q: %w", path, err)
	}
	return &report, nil
}

// ListReports returns the result file paths in dir, newest run id first.
func ListReports(dir string) ([]string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "results"
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("runner: read results dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "run_") && strings.HasSuffix(name, ".json") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}
