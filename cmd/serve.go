package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/adscreen/internal/dispatch"
	"github.com/sells-group/adscreen/internal/model"
)

const maxBodyBytes = 1 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the screening HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := newScreeningEnv(cfg)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildRouter(env),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// screenRequest is the POST /v1/screen body.
type screenRequest struct {
	Text            string   `json:"text"`
	Modules         []string `json:"modules,omitempty"`
	Parallel        *bool    `json:"parallel,omitempty"`
	TimeoutMs       int      `json:"timeout_ms,omitempty"`
	ContinueOnError *bool    `json:"continue_on_error,omitempty"`
}

func buildRouter(env *screeningEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/modules", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"modules": env.Dispatcher.Modules()})
		})
		r.Post("/screen", screenHandler(env))
	})

	return r
}

func screenHandler(env *screeningEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zap.L().With(
			zap.String("component", "server"),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req screenRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Text == "" {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}
		if req.TimeoutMs < 0 {
			writeError(w, http.StatusBadRequest, "timeout_ms must be >= 0")
			return
		}

		out, err := env.Dispatcher.Route(r.Context(), model.ModuleInput{Text: req.Text}, dispatch.RouteOptions{
			Modules:         req.Modules,
			Parallel:        req.Parallel,
			Timeout:         time.Duration(req.TimeoutMs) * time.Millisecond,
			ContinueOnError: req.ContinueOnError,
		})
		if err != nil {
			log.Warn("screen request failed", zap.Error(err))
			body := map[string]string{"error": err.Error()}
			var me *dispatch.ModuleError
			if errors.As(err, &me) {
				body["module"] = me.Module
			}
			writeJSON(w, http.StatusBadGateway, body)
			return
		}

		log.Info("screen request complete",
			zap.String("id", out.ID),
			zap.Int("violations", len(out.Violations)),
		)
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
