package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aurea33/forge-go/internal/config"
	"github.com/aurea33/forge-go/pkg/forge"
	"github.com/aurea33/forge-go/pkg/forge/models"
	"github.com/aurea33/forge-go/pkg/forge/openai"
	"github.com/aurea33/forge-go/pkg/forge/spec"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxBodyBytes    = 4 << 20
)

type Server struct {
	cfg  *config.Config
	lg   *slog.Logger
	deps forge.Deps
	rl   *rateLimiter
	http *http.Server
}

func NewServer(cfg *config.Config, lg *slog.Logger, deps forge.Deps) *Server {
	s := &Server{cfg: cfg, lg: lg, deps: deps, rl: newRateLimiter(cfg.HTTP.RateRPS)}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.getHealth)
	mux.HandleFunc("/api/excel", s.rl.middleware(s.postExcel))

	s.http = &http.Server{
		Addr:    cfg.HTTP.Bind,
		Handler: mux,
	}
	return s
}

// Handler exposes the routed mux, mostly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) Start() error {
	s.lg.Info("http server starting", "bind", s.cfg.HTTP.Bind)
	return s.http.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.lg.Info("http server stopping")
	return s.http.Shutdown(ctx)
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "service": "forge-excel"})
}

func (s *Server) postExcel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req models.GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "JSON inválido en el cuerpo de la solicitud.")
		return
	}

	res, err := forge.Generate(r.Context(), req, s.deps)
	if err != nil {
		s.writeGenerateError(w, r, err)
		return
	}

	if res.SpecOnly {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "spec": res.Spec})
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Write(res.Data)
}

// writeGenerateError maps the generation error taxonomy onto HTTP statuses.
// Caller mistakes are 400, an unusable model reply is 422 and everything else
// collapses into a generic 500 so internals never leak to the client.
func (s *Server) writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *spec.ValidationError
	switch {
	case errors.Is(err, forge.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, "Falta especificar qué generar: manda spec, prompt o wizard.")
	case errors.As(err, &verr):
		writeJSONError(w, http.StatusBadRequest, "La especificación no es válida: "+verr.Error())
	case errors.Is(err, openai.ErrUpstream), errors.Is(err, spec.ErrNoJSON):
		writeJSONError(w, http.StatusUnprocessableEntity, "El modelo no produjo una especificación utilizable; intenta de nuevo.")
	default:
		s.lg.ErrorContext(r.Context(), "generation failed", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Error interno al generar el archivo.")
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": msg})
}
