package server

import (
	"bytes"
	"context"
	"errors"
	"lp-tracker/internal/api"
	"lp-tracker/internal/chart"
	"lp-tracker/internal/config"
	"lp-tracker/internal/domain"
	"lp-tracker/internal/middleware"
	"lp-tracker/internal/ranking"
	"lp-tracker/internal/service"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type HistoryProvider interface {
	GetHistory(ctx context.Context, riotID domain.RiotID, region domain.Region, opts service.FetchOptions) (*domain.LPHistory, error)
}

type HistoryServer struct {
	history   HistoryProvider
	rankCfg   ranking.Config
	batchSize int
	pageLimit int
	logger    zerolog.Logger
}

func NewHistoryServer(history HistoryProvider, rankCfg ranking.Config, cfg *config.Config, logger zerolog.Logger) *HistoryServer {
	return &HistoryServer{
		history:   history,
		rankCfg:   rankCfg,
		batchSize: cfg.BatchSize,
		pageLimit: cfg.PageLimit,
		logger:    logger,
	}
}

// Routes mounts the JSON API, the chart page, health and metrics.
func (s *HistoryServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/history/{region}/{riotID}", func(r chi.Router) {
		r.Get("/", s.getHistory)
		r.Get("/chart", s.getChart)
	})
	return r
}

type thresholdResponse struct {
	Tier     domain.Tier     `json:"tier"`
	Division domain.Division `json:"division"`
	MinValue int             `json:"minValue"`
	// nil for the open-ended top threshold
	MaxValue *int `json:"maxValue"`
}

type pointResponse struct {
	Value     int                `json:"value"`
	Rank      string             `json:"rank"`
	Timestamp time.Time          `json:"timestamp"`
	Patch     string             `json:"patch"`
	Result    domain.MatchResult `json:"result,omitempty"`
	LPDelta   *int               `json:"lpDelta"`
	GamesAgo  int                `json:"gamesAgo"`
}

type historyResponse struct {
	RiotID     string              `json:"riotId"`
	Region     domain.Region       `json:"region"`
	Pages      int                 `json:"pages"`
	Points     []pointResponse     `json:"points"`
	Thresholds []thresholdResponse `json:"thresholds"`
	Peak       *pointResponse      `json:"peak"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *HistoryServer) getHistory(w http.ResponseWriter, r *http.Request) {
	hist, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.toResponse(hist))
}

func (s *HistoryServer) getChart(w http.ResponseWriter, r *http.Request) {
	hist, ok := s.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, hist, s.rankCfg, chart.DefaultOptions()); err != nil {
		if errors.Is(err, chart.ErrNoPoints) {
			s.writeError(w, r, http.StatusNotFound, err)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// load parses the path and query and fetches the history, writing the error response on failure.
func (s *HistoryServer) load(w http.ResponseWriter, r *http.Request) (*domain.LPHistory, bool) {
	region, err := domain.ParseRegion(chi.URLParam(r, "region"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return nil, false
	}

	rawID, err := url.PathUnescape(chi.URLParam(r, "riotID"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return nil, false
	}
	riotID, err := domain.ParseRiotID(rawID)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return nil, false
	}

	opts := service.FetchOptions{PageLimit: s.pageLimit, BatchSize: s.batchSize}
	if raw := r.URL.Query().Get("pages"); raw != "" {
		pages, err := strconv.Atoi(raw)
		if err != nil || pages < 0 {
			s.writeError(w, r, http.StatusBadRequest, errors.New("pages must be a non-negative integer"))
			return nil, false
		}
		opts.PageLimit = pages
	}

	hist, err := s.history.GetHistory(r.Context(), riotID, region, opts)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return nil, false
	}
	return hist, true
}

func statusFor(err error) int {
	var fetchErr *service.FetchError
	var normErr *service.NormalizationError
	var serviceErr *api.ServiceError
	switch {
	case errors.As(err, &fetchErr) && fetchErr.Class == "timeout":
		return http.StatusGatewayTimeout
	case errors.As(err, &serviceErr) && serviceErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case errors.As(err, &fetchErr), errors.As(err, &normErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *HistoryServer) toResponse(hist *domain.LPHistory) historyResponse {
	resp := historyResponse{
		RiotID:     hist.RiotID.String(),
		Region:     hist.Region,
		Pages:      hist.Pages,
		Points:     make([]pointResponse, 0, len(hist.Points)),
		Thresholds: make([]thresholdResponse, 0, len(hist.Thresholds)),
	}
	for _, p := range hist.Points {
		resp.Points = append(resp.Points, s.toPoint(p, hist.Thresholds))
	}
	for _, t := range hist.Thresholds {
		tr := thresholdResponse{Tier: t.Tier, Division: t.Division, MinValue: t.MinValue}
		if !t.Unbounded() {
			maxValue := t.MaxValue
			tr.MaxValue = &maxValue
		}
		resp.Thresholds = append(resp.Thresholds, tr)
	}
	if hist.Peak != nil {
		peak := s.toPoint(*hist.Peak, hist.Thresholds)
		resp.Peak = &peak
	}
	return resp
}

func (s *HistoryServer) toPoint(p domain.ScorePoint, thresholds []domain.Threshold) pointResponse {
	return pointResponse{
		Value:     p.Value,
		Rank:      ranking.FormatRank(p.Value, thresholds, s.rankCfg, ranking.FormatOptions{Short: true, ShowLP: true}),
		Timestamp: p.Timestamp,
		Patch:     p.Patch,
		Result:    p.Result,
		LPDelta:   p.LPDelta,
		GamesAgo:  p.GamesAgo,
	}
}

func (s *HistoryServer) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	requestID := middleware.GetRequestID(r.Context())
	zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: requestID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
