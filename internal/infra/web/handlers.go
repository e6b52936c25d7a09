package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"training-enrichment/internal/domain"
	"training-enrichment/internal/domain/model"
)

// processResponse is the stable trigger-endpoint contract: either one unit of
// work was done, the queue was empty, or the invocation failed.
type processResponse struct {
	Success           bool   `json:"success"`
	SessionID         string `json:"sessionId,omitempty"`
	CoachType         string `json:"coachType,omitempty"`
	LatencyMs         int64  `json:"latencyMs,omitempty"`
	ExercisesEnriched int    `json:"exercisesEnriched,omitempty"`
	Message           string `json:"message,omitempty"`
	Processed         *int   `json:"processed,omitempty"`
	Error             string `json:"error,omitempty"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, err := s.processor.ProcessOne(r.Context())
	latency := time.Since(start).Milliseconds()

	if err != nil {
		writeJSON(w, http.StatusInternalServerError, processResponse{
			Success:   false,
			Error:     err.Error(),
			LatencyMs: latency,
		})
		return
	}
	if result == nil {
		zero := 0
		writeJSON(w, http.StatusOK, processResponse{
			Success:   true,
			Message:   "No pending enrichments",
			Processed: &zero,
		})
		return
	}
	writeJSON(w, http.StatusOK, processResponse{
		Success:           true,
		SessionID:         result.SessionID,
		CoachType:         string(result.CoachType),
		LatencyMs:         result.LatencyMs,
		ExercisesEnriched: result.ExercisesEnriched,
	})
}

type enqueueRequest struct {
	UserID    string `json:"userId"`
	CoachType string `json:"coachType"`
	Priority  int    `json:"priority"`
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	coach, err := model.ParseCoachType(req.CoachType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.enrichUC.QueueForEnrichment(r.Context(), req.UserID, sessionID, coach, req.Priority); err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to queue enrichment", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	writeJSON(w, http.StatusOK, s.enrichUC.GetEnrichmentStatus(r.Context(), sessionID))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.enrichUC.QueueStats(r.Context())
	if err != nil {
		http.Error(w, "Failed to read queue stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
