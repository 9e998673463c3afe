package server

import (
	"net/http"
	"strconv"

	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/processor"
)

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "change log is not configured")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be a number between 1 and 1000")
			return
		}
		limit = n
	}

	changes, err := s.db.ListRecentChanges(r.Context(), limit)
	if err != nil {
		utils.Log.Errorf("Failed to list changes: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list changes")
		return
	}

	type changeOut struct {
		OccurredAt   string   `json:"occurred_at"`
		MatchID      string   `json:"match_id"`
		MatchNumber  string   `json:"match_number,omitempty"`
		Category     string   `json:"category"`
		Priority     string   `json:"priority"`
		Stakeholders []string `json:"affected_stakeholders"`
		FieldName    string   `json:"field_name"`
		Description  string   `json:"change_description"`
	}
	out := make([]changeOut, 0, len(changes))
	for _, c := range changes {
		out = append(out, changeOut{
			OccurredAt:   c.OccurredAt.UTC().Format("2006-01-02T15:04:05Z"),
			MatchID:      c.MatchID,
			MatchNumber:  c.MatchNumber,
			Category:     c.Category,
			Priority:     c.Priority,
			Stakeholders: c.Stakeholders,
			FieldName:    c.FieldName,
			Description:  c.Description,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(out),
		"changes": out,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "change log is not configured")
		return
	}

	stats, err := s.db.GetStats(r.Context())
	if err != nil {
		utils.Log.Errorf("Failed to query stats: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to query stats")
		return
	}

	type statOut struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
		Critical int    `json:"critical"`
	}
	out := make([]statOut, 0, len(stats))
	total := 0
	for _, st := range stats {
		out = append(out, statOut{Category: st.Category, Count: st.Count, Critical: st.Critical})
		total += st.Count
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_changes": total,
		"categories":    out,
	})
}

// handleProcess triggers a processing cycle synchronously and reports what it
// found. A cycle already in flight gets a 409 instead of queuing.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res, err := s.proc.RunCycle(r.Context())
	if err != nil {
		if err == processor.ErrCycleInFlight {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		utils.Log.Errorf("Triggered cycle failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"processed":        res.Processed,
		"new_matches":      len(res.Summary.NewMatches),
		"updated_matches":  len(res.Summary.UpdatedMatches),
		"removed_matches":  len(res.Summary.RemovedMatches),
		"total_changes":    res.Summary.TotalChanges,
		"field_changes":    len(res.Summary.Changes),
		"critical_changes": res.Summary.CriticalChanges,
		"assets_generated": res.AssetsGenerated,
		"notified":         res.Notified,
		"duration_ms":      res.Duration.Milliseconds(),
		"errors":           res.Errors,
	})
}
