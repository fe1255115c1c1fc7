package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/signkit/signspace/pkg/analyze"
	"github.com/signkit/signspace/pkg/engine"
	serrors "github.com/signkit/signspace/pkg/errors"
	"github.com/signkit/signspace/pkg/sio"
	"github.com/signkit/signspace/pkg/space"
)

// shutdownTimeout bounds graceful shutdown after the context is cancelled.
const shutdownTimeout = 5 * time.Second

// newServeCmd creates the serve command: the engine exposed as an HTTP
// service. All endpoints accept and return JSON.
//
// Routes:
//   - GET  /healthz      liveness probe
//   - POST /v1/generate  cultural context -> structure document
//   - POST /v1/analyze   text or structured input -> analysis
//   - POST /v1/validate  structure document -> integrity report and scores
func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine as an HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")

	return cmd
}

func runServe(ctx context.Context, cfg Config) error {
	logger := loggerFromContext(ctx)
	mgr := newManager(cfg, false, logger)

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           newRouter(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", cfg.Serve.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newRouter builds the chi router over an engine manager.
func newRouter(mgr *engine.Manager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/generate", handleGenerate(mgr))
		r.Post("/analyze", handleAnalyze(mgr))
		r.Post("/validate", handleValidate(mgr))
	})

	return r
}

func handleGenerate(mgr *engine.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cctx space.CulturalContext
		if err := json.NewDecoder(r.Body).Decode(&cctx); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s, err := mgr.GenerateStructure(r.Context(), cctx)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, sio.FromStructure(s))
	}
}

// analyzeRequest carries either free text or structured input; text wins
// when both are present.
type analyzeRequest struct {
	Text       string                  `json:"text,omitempty"`
	Components []analyze.ComponentSpec `json:"components,omitempty"`
	Relations  []analyze.RelationSpec  `json:"relations,omitempty"`
}

func handleAnalyze(mgr *engine.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		var (
			a   *analyze.Analysis
			err error
		)
		if req.Text != "" {
			a, err = mgr.AnalyzeText(r.Context(), req.Text)
		} else {
			a, err = mgr.AnalyzeStructured(r.Context(), analyze.StructuredInput{
				Components: req.Components,
				Relations:  req.Relations,
			})
		}
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func handleValidate(mgr *engine.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc sio.Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s, err := sio.ToStructure(doc)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		report := mgr.SelfValidate(s)
		resp := validateResponse{Report: report, Passed: true}
		if err := mgr.ValidateStructure(r.Context(), s); err != nil {
			resp.Passed = false
			var verr *serrors.ValidationError
			if errors.As(err, &verr) {
				resp.Scores = verr.Scores
				resp.Threshold = verr.Threshold
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// validateResponse is the /v1/validate payload.
type validateResponse struct {
	Report    engine.Report      `json:"report"`
	Passed    bool               `json:"passed"`
	Scores    map[string]float64 `json:"scores,omitempty"`
	Threshold float64            `json:"threshold,omitempty"`
}

// =============================================================================
// Internal Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps engine error codes to HTTP statuses.
func statusFor(err error) int {
	switch serrors.GetCode(err) {
	case serrors.ErrCodeInvalidInput, serrors.ErrCodeInvalidContext, serrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case serrors.ErrCodeNotFound:
		return http.StatusNotFound
	case serrors.ErrCodeValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
