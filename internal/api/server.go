// Package api serves past run results and the leaderboard over HTTP for
// local inspection.
package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arbiterlab/madbench/internal/leaderboard"
)

type Server struct {
	router     *gin.Engine
	resultsDir string
	store      *leaderboard.Store // optional
}

func NewServer(resultsDir string, store *leaderboard.Store) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		router:     r,
		resultsDir: strings.TrimSpace(resultsDir),
		store:      store,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	if s == nil || s.router == nil {
		return
	}

	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
	api.GET("/leaderboard", s.handleLeaderboard)
}

func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return errors.New("api: nil server")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() *gin.Engine {
	if s == nil {
		return nil
	}
	return s.router
}
