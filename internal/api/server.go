// Package api exposes the scoring engine, bond store, and market data over
// HTTP for the web frontend.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rsm-13/green-prism/internal/config"
	"github.com/rsm-13/green-prism/internal/market"
	"github.com/rsm-13/green-prism/internal/model"
	"github.com/rsm-13/green-prism/internal/scorer"
	"github.com/rsm-13/green-prism/internal/store"
	"github.com/rsm-13/green-prism/pkg/stooq"
)

// Server wires the engine and its collaborators into HTTP handlers.
type Server struct {
	store  store.Store
	engine *scorer.Engine
	series *market.Provider
	live   stooq.Client
	cfg    config.ServerConfig
}

// NewServer creates a Server. live may be nil to disable the Stooq fallback.
func NewServer(st store.Store, engine *scorer.Engine, series *market.Provider, live stooq.Client, cfg config.ServerConfig) *Server {
	return &Server{store: st, engine: engine, series: series, live: live, cfg: cfg}
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/bonds", s.handleListBonds)
		r.Get("/bonds/{bondID}", s.handleGetBond)
		r.Get("/market/{symbol}", s.handleMarket)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyzeRequest is the POST /api/analyze body. Numeric fields are pointers
// so absent and zero stay distinguishable.
type analyzeRequest struct {
	Text              string   `json:"text"`
	ClaimedImpactTons *float64 `json:"claimed_impact_co2_tons"`
	AmountIssuedUSD   *float64 `json:"amount_issued_usd"`
	ProjectCategory   string   `json:"project_category"`
	Mode              string   `json:"mode"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	mode, err := model.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.engine.Score(scorer.Request{
		Text:              req.Text,
		ClaimedImpactTons: req.ClaimedImpactTons,
		AmountIssuedUSD:   req.AmountIssuedUSD,
		ProjectCategory:   req.ProjectCategory,
		Mode:              mode,
	})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListBonds(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 200)
	bonds, err := s.store.ListBonds(r.Context(), limit)
	if err != nil {
		zap.L().Error("api: list bonds", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list bonds")
		return
	}
	if bonds == nil {
		bonds = []model.Bond{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bonds": bonds,
		"count": len(bonds),
	})
}

// bondDetail is the GET /api/bonds/{bondID} payload: the bond plus a score
// computed fresh from its disclosure text.
type bondDetail struct {
	Bond  *model.Bond        `json:"bond"`
	Score *model.ScoreResult `json:"score"`
}

func (s *Server) handleGetBond(w http.ResponseWriter, r *http.Request) {
	bondID := chi.URLParam(r, "bondID")

	mode, err := model.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bond, err := s.store.GetBond(r.Context(), bondID)
	if eris.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "bond not found")
		return
	} else if err != nil {
		zap.L().Error("api: get bond", zap.String("bond_id", bondID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load bond")
		return
	}

	result := s.engine.Score(scorer.Request{
		Text:              bond.Disclosure(),
		ClaimedImpactTons: bond.ClaimedImpactTons,
		AmountIssuedUSD:   bond.AmountIssuedUSD,
		ProjectCategory:   bond.ProjectCategory,
		Mode:              mode,
	})
	writeJSON(w, http.StatusOK, bondDetail{Bond: bond, Score: result})
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	days := intQuery(r, "days", 365)

	if r.URL.Query().Get("live") == "true" {
		if s.live == nil {
			writeError(w, http.StatusServiceUnavailable, "live market data is not configured")
			return
		}
		history, err := s.live.DailyHistory(r.Context(), symbol, days)
		if err != nil {
			zap.L().Error("api: live market history", zap.String("symbol", symbol), zap.Error(err))
			writeError(w, http.StatusBadGateway, "live market data unavailable")
			return
		}
		points := make([]market.Point, 0, len(history))
		for _, p := range history {
			points = append(points, market.Point(p))
		}
		writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "days": days, "points": points})
		return
	}

	points, err := s.series.Series(symbol, days)
	if err != nil {
		writeError(w, http.StatusNotFound, "no series for symbol")
		return
	}
	summary, err := s.series.Summarize(symbol, days)
	if err != nil {
		zap.L().Error("api: summarize series", zap.String("symbol", symbol), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to summarize series")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":  summary.Symbol,
		"days":    days,
		"points":  points,
		"summary": summary,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func intQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// requestLogger logs each request with the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
