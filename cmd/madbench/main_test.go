package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arbiterlab/madbench/internal/llm"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRootRegistersSubcommands(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	for _, name := range []string{"run", "dataset", "complete", "leaderboard", "serve"} {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("subcommand %q not registered", name)
		}
	}
}

func TestUnknownCommandFails(t *testing.T) {
	t.Parallel()

	if _, err := execute(t, "bogus"); err == nil {
		t.Fatal("unknown command: expected error")
	}
}

func TestRunFailsFastWithoutCredentials(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("MADBENCH_DATA_DIR", t.TempDir())

	resultsDir := t.TempDir()
	cfgPath := writeTestConfig(t, `
llm:
  default_provider: groq
  providers:
    groq:
      model: test-model

experiment:
  results_dir: `+resultsDir+`

storage:
  type: none
`)

	_, err := execute(t, "run", "--config", cfgPath)
	if !errors.Is(err, llm.ErrAuth) {
		t.Fatalf("run without credentials: got %v want ErrAuth", err)
	}

	// The credential check happens before any dataset fetch or results
	// write: both directories stay empty.
	for _, dir := range []string{resultsDir, os.Getenv("MADBENCH_DATA_DIR")} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("read %s: %v", dir, err)
		}
		if len(entries) != 0 {
			t.Fatalf("%s should be untouched, found %d entries", dir, len(entries))
		}
	}
}

func TestDatasetCommandReadsCache(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("MADBENCH_DATA_DIR", dataDir)

	csv := "idx,prompt,question,choice_a,choice_b,choice_c,choice_d,answer,gold_passage\n" +
		"q1,Ctx.,What result?,W,X,Y,Z,a,Passage.\n" +
		"q2,,And this?,W,X,Y,Z,b,\n"
	if err := os.WriteFile(filepath.Join(dataDir, "test.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	cfgPath := writeTestConfig(t, "llm:\n  providers: {}\n")

	out, err := execute(t, "dataset", "--config", cfgPath, "--sample-size", "1")
	if err != nil {
		t.Fatalf("dataset command: %v", err)
	}
	if !strings.Contains(out, "Loaded 1 questions from barexam_qa") {
		t.Fatalf("output missing load summary:\n%s", out)
	}
	if !strings.Contains(out, "ID: q1") {
		t.Fatalf("output missing sample question:\n%s", out)
	}
}

func TestLeaderboardCommandEmptyStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lb.db")
	cfgPath := writeTestConfig(t, `
llm:
  providers: {}

storage:
  type: sqlite
  path: `+dbPath+`
`)

	out, err := execute(t, "leaderboard", "--config", cfgPath)
	if err != nil {
		t.Fatalf("leaderboard command: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet.") {
		t.Fatalf("output: %q", out)
	}
}

func TestLeaderboardCommandStorageDisabled(t *testing.T) {
	cfgPath := writeTestConfig(t, "storage:\n  type: none\n")

	if _, err := execute(t, "leaderboard", "--config", cfgPath); err == nil {
		t.Fatal("leaderboard with storage disabled: expected error")
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	t.Parallel()

	st := &cliState{configPath: filepath.Join(t.TempDir(), "absent.yaml")}
	if err := st.loadConfig(); err == nil {
		t.Fatal("loadConfig with explicit missing path: expected error")
	}
}

func TestLoadConfigDefaultPathFallsBack(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "env-key")

	// The default path does not exist relative to the test's working
	// directory, so loadConfig falls back to defaults plus environment.
	st := &cliState{configPath: "configs/config.yaml"}
	if err := st.loadConfig(); err != nil {
		t.Fatalf("loadConfig fallback: %v", err)
	}
	if st.cfg == nil || st.cfg.Experiment.SampleSize != 10 {
		t.Fatalf("fallback config: got %+v", st.cfg)
	}
	if got := st.cfg.LLM.Providers["groq"].APIKey; got != "env-key" {
		t.Fatalf("fallback should read GROQ_API_KEY: got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"abcdefghij", 5, "abcde..."},
		{"", 5, ""},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Fatalf("truncate(%q, %d): got %q want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestProviderModel(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	cfgPath := writeTestConfig(t, `
llm:
  providers:
    groq:
      model: llama-3.3-70b-versatile
`)
	st := &cliState{configPath: cfgPath}
	if err := st.loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if got := providerModel(st.cfg, "groq"); got != "llama-3.3-70b-versatile" {
		t.Fatalf("providerModel(groq): got %q", got)
	}
	if got := providerModel(st.cfg, "missing"); got != "default" {
		t.Fatalf("providerModel(missing): got %q want default", got)
	}
}
