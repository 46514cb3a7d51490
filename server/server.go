package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	orchestratorx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/agents/orchestrator"
)

type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Agent is the turn entry point the HTTP layer fronts.
type Agent interface {
	Process(ctx context.Context, sessionID string, question string) (string, error)
}

type Server struct {
	http     *http.Server
	shutdown time.Duration
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(agent Agent, conf Config) (*Server, error) {
	if agent == nil {
		return nil, errors.New("agent is required")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", handleChat(agent))
	mux.HandleFunc("GET /health", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return &Server{
		http: &http.Server{
			Addr:         conf.Addr,
			Handler:      mux,
			ReadTimeout:  conf.ReadTimeout,
			WriteTimeout: conf.WriteTimeout,
		},
		shutdown: conf.ShutdownTimeout,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight turns
// within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("http server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}

func handleChat(agent Agent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be JSON"})
			return
		}

		answer, err := agent.Process(r.Context(), req.SessionID, req.Question)
		if err != nil {
			switch {
			case errors.Is(err, orchestratorx.ErrInvalidQuestion), errors.Is(err, orchestratorx.ErrInvalidSession):
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			case r.Context().Err() != nil:
				// Client went away; nothing useful left to write.
				log.Debug().Str("session_id", req.SessionID).Msg("chat request cancelled by client")
			default:
				log.Error().Err(err).Str("session_id", req.SessionID).Msg("chat turn failed")
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			}
			return
		}

		writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("writing response failed")
	}
}
