package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/fitorfat/internal/figure"
	"github.com/sells-group/fitorfat/internal/query"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	CORSOrigins    []string
	RateLimitRPS   float64 // <= 0 disables rate limiting
	RateLimitBurst int
}

// NewRouter builds the HTTP handler for the dashboard page and its JSON API.
func NewRouter(svc *Service, opts RouterOptions) http.Handler {
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/health", h.health)
	r.Get("/", h.index)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
			MaxAge:         300,
		}))
		if opts.RateLimitRPS > 0 {
			r.Use(RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))
		}

		r.Get("/options", h.options)
		r.Get("/map", h.mapFigure)
		r.Get("/chart", h.chart)
		r.Post("/render", h.render)
		r.Get("/cache/stats", h.cacheStats)
		r.Delete("/cache", h.cachePurge)
	})

	return r
}

type handler struct {
	svc *Service
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (h *handler) options(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Options())
}

func (h *handler) mapFigure(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	body, err := h.svc.Map(r.URL.Query().Get("bmi"), year)
	if err != nil {
		serverError(w, r, "map render failed", err)
		return
	}
	writeBody(w, body)
}

func (h *handler) chart(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	kind := figure.BySex
	if raw := q.Get("kind"); raw != "" {
		kind = figure.ParseChartKind(raw)
	}

	// An absent countries parameter means no selection; an empty one is an
	// explicit empty selection.
	var selection *query.CountrySet
	if raw, present := q["countries"]; present {
		selection = query.NewCountrySet(strings.Split(strings.Join(raw, ","), ",")...)
	}

	body, err := h.svc.Chart(kind, q.Get("bmi"), year, selection)
	if err != nil {
		serverError(w, r, "chart render failed", err)
		return
	}
	writeBody(w, body)
}

func (h *handler) render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	body, err := h.svc.Render(req)
	if err != nil {
		serverError(w, r, "render failed", err)
		return
	}
	writeBody(w, body)
}

func (h *handler) cacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Cache().Stats())
}

func (h *handler) cachePurge(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	switch scope {
	case "", "map", "chart", "render":
	default:
		writeError(w, http.StatusBadRequest, "scope must be map, chart or render")
		return
	}
	removed := h.svc.Cache().Invalidate(scope)
	zap.L().Info("dashboard: cache purged", zap.String("scope", scope), zap.Int("removed", removed))
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// yearParam parses the optional year query parameter. On a malformed value it
// writes a 400 and returns false.
func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		return 0, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		writeError(w, http.StatusBadRequest, "year must be a positive integer")
		return 0, false
	}
	return year, true
}

func writeBody(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	zap.L().Error("dashboard: "+msg,
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, msg)
}
