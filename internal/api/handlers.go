package api

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arbiterlab/madbench/internal/runner"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type runSummary struct {
	RunID      string  `json:"run_id"`
	Dataset    string  `json:"dataset"`
	Model      string  `json:"model"`
	SampleSize int     `json:"sample_size"`
	Accuracy   float64 `json:"accuracy"`
	Failed     int     `json:"failed"`
	StartedAt  string  `json:"started_at"`
}

func (s *Server) handleListRuns(c *gin.Context) {
	paths, err := runner.ListReports(s.resultsDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]runSummary, 0, len(paths))
	for _, p := range paths {
		report, err := runner.ReadReport(p)
		if err != nil {
			continue // unreadable files are skipped, not fatal
		}
		out = append(out, runSummary{
			RunID:      report.RunID,
			Dataset:    report.Dataset,
			Model:      report.Model,
			SampleSize: report.SampleSize,
			Accuracy:   report.Accuracy,
			Failed:     report.Failed,
			StartedAt:  report.StartedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	// Run ids map 1:1 to file names; reject anything path-like.
	if id == "" || id != filepath.Base(id) || !strings.HasPrefix(id, "run_") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	report, err := runner.ReadReport(filepath.Join(s.resultsDir, id+".json"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard store not configured"})
		return
	}

	limit := 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := s.store.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
