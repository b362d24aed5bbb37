package web

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"promptmarket/internal/usecase"
)

type Server struct {
	jobUC    usecase.JobUseCase
	subUC    usecase.SubmissionUseCase
	settleUC usecase.SettlementUseCase
	apiKey   string
	log      *zerolog.Logger
}

func NewServer(
	jobUC usecase.JobUseCase,
	subUC usecase.SubmissionUseCase,
	settleUC usecase.SettlementUseCase,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		jobUC:    jobUC,
		subUC:    subUC,
		settleUC: settleUC,
		apiKey:   apiKey,
		log:      logger,
	}
}

// RegisterRoutes sets up the routing for the marketplace API.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	jobsRouter := s.authMiddleware(s.jobsRouter())
	mux.Handle("/api/v1/jobs", jobsRouter)  // POST create
	mux.Handle("/api/v1/jobs/", jobsRouter) // GET one, submissions, score, settle

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// authMiddleware provides simple Bearer token authentication. An empty
// configured key disables the guard (dev setups).
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}
		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// jobsRouter dispatches /api/v1/jobs and its sub-resources.
func (s *Server) jobsRouter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs")
		path = strings.Trim(path, "/")

		if path == "" {
			if r.Method != http.MethodPost {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			s.jobCreateHandler()(w, r)
			return
		}

		parts := strings.Split(path, "/")
		jobID := parts[0]
		switch {
		case len(parts) == 1 && r.Method == http.MethodGet:
			s.jobGetHandler(jobID)(w, r)
		case len(parts) == 2 && parts[1] == "submissions" && r.Method == http.MethodPost:
			s.submissionCreateHandler(jobID)(w, r)
		case len(parts) == 2 && parts[1] == "score" && r.Method == http.MethodPost:
			s.scoreHandler(jobID)(w, r)
		case len(parts) == 2 && parts[1] == "settle" && r.Method == http.MethodPost:
			s.settleHandler(jobID)(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
