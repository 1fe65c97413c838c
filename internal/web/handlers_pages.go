package web

import (
	"net/http"

	"github.com/JonMunkholm/branchtree/internal/core"
)

// SchemaResponse describes the columns the converter reads.
type SchemaResponse struct {
	Hierarchy []string            `json:"hierarchy"`
	Metrics   []core.MetricColumn `json:"metrics"`
	Strategy  core.Strategy       `json:"defaultStrategy"`
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, SchemaResponse{
		Hierarchy: []string{core.ColState, core.ColRegion, core.ColBranchName},
		Metrics:   core.MetricColumns,
		Strategy:  s.service.DefaultStrategy(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.LimiterStatus())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
