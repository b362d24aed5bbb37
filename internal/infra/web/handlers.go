package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"promptmarket/internal/domain"
	"promptmarket/internal/usecase"
)

type jobCreateRequest struct {
	Title           string    `json:"title"`
	Prompt          string    `json:"prompt"`
	RewardTokens    int64     `json:"rewardTokens"`
	DeadlineAt      time.Time `json:"deadlineAt"`
	RequesterHandle string    `json:"requesterHandle,omitempty"`
}

type submissionCreateRequest struct {
	WorkerHandle string `json:"workerId"`
	Content      string `json:"content"`
	LatencyMs    int64  `json:"latencyMs"`
}

type scoreRequest struct {
	SubmissionID string   `json:"submissionId"`
	Quality      *float64 `json:"quality,omitempty"`
}

type settleRequest struct {
	SimulateFailureAfterEscrowRelease bool `json:"simulateFailureAfterEscrowRelease,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) jobCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req jobCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, domain.ErrInvalidArgument)
			return
		}

		job, escrow, err := s.jobUC.Create(r.Context(), req.RequesterHandle, req.Title, req.Prompt, req.RewardTokens, req.DeadlineAt)
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"job":    job,
			"escrow": escrow,
		})
	}
}

func (s *Server) jobGetHandler(jobID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := s.jobUC.Get(r.Context(), jobID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) submissionCreateHandler(jobID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submissionCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, domain.ErrInvalidArgument)
			return
		}

		sub, err := s.subUC.Create(r.Context(), jobID, req.WorkerHandle, req.Content, req.LatencyMs)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

func (s *Server) scoreHandler(jobID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, domain.ErrInvalidArgument)
			return
		}
		if req.SubmissionID == "" {
			s.writeError(w, domain.ErrInvalidArgument)
			return
		}

		res, err := s.subUC.Score(r.Context(), jobID, req.SubmissionID, req.Quality)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"submission": res.Submission,
			"quality":    res.Quality,
			"speed":      res.Speed,
			"score":      res.Score,
			"formula":    res.Formula,
		})
	}
}

func (s *Server) settleHandler(jobID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req settleRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.writeError(w, domain.ErrInvalidArgument)
				return
			}
		}

		res, err := s.settleUC.Settle(r.Context(), jobID, usecase.SettleOptions{
			SimulateFailureAfterEscrowRelease: req.SimulateFailureAfterEscrowRelease,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"jobId":              res.JobID,
			"payoutsCount":       res.PayoutsCount,
			"winnerSubmissionId": res.WinnerSubmissionID,
		})
	}
}

// writeError maps domain errors to the reported error identifiers. Callers
// can rely on the identifier to distinguish "nothing happened" rejections
// from a rolled-back settlement transaction.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		status int
		code   string
	)
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status, code = http.StatusBadRequest, "ValidationError"
	case errors.Is(err, domain.ErrJobNotFound):
		status, code = http.StatusNotFound, "JobNotFound"
	case errors.Is(err, domain.ErrSubmissionNotFound):
		status, code = http.StatusNotFound, "SubmissionNotFound"
	case errors.Is(err, domain.ErrEscrowNotFound):
		status, code = http.StatusNotFound, "JobOrEscrowNotFound"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NotFound"
	case errors.Is(err, domain.ErrNoScoredSubmissions):
		status, code = http.StatusConflict, "NoScoredSubmissions"
	case errors.Is(err, domain.ErrAlreadySettled):
		status, code = http.StatusConflict, "AlreadySettled"
	case errors.Is(err, domain.ErrInvalidTransition):
		status, code = http.StatusConflict, "IllegalState"
	case errors.Is(err, domain.ErrSimulatedFailure):
		status, code = http.StatusInternalServerError, "SimulatedFailure"
	default:
		s.log.Error().Err(err).Msg("internal error")
		status, code = http.StatusInternalServerError, "InternalError"
	}
	writeJSON(w, status, errorResponse{Error: code})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
