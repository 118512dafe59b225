// internal/server/handlers/trend.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/hlog"

	"trendwise/internal/domain/trend"
	"trendwise/internal/service/listening"
)

// Listing limits
const (
	DefaultTrendLimit   = 15
	MaxTrendLimit       = 50
	DefaultHistoryLimit = 10
)

// SocialFallback produces social-style topics when no live social record
// survived aggregation
type SocialFallback interface {
	Synthesize() []trend.Trend
}

// TrendsResponse is the body of a trend listing
type TrendsResponse struct {
	Trends []trend.Trend `json:"trends"`
	Source string        `json:"source"`
	Limit  int           `json:"limit"`
	Total  int           `json:"total"`
}

// TrendHandler handles trend-related HTTP requests
type TrendHandler struct {
	service trend.Service
	social  SocialFallback
}

// NewTrendHandler creates a new trend handler
func NewTrendHandler(service trend.Service, social SocialFallback) *TrendHandler {
	return &TrendHandler{
		service: service,
		social:  social,
	}
}

// GetTrends returns the current ranked list, optionally narrowed to one source
func (h *TrendHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	filter, sourceName, err := parseTrendFilter(r)
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	trends, err := h.service.Trends(r.Context())
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Failed to get trends", err)
		return
	}

	selected := filter.Apply(trends)
	if len(selected) == 0 && filter.Source == trend.SourceSocial && h.social != nil {
		selected = trend.Filter{Limit: filter.Limit}.Apply(h.social.Synthesize())
	}

	respondWithJSON(w, http.StatusOK, TrendsResponse{
		Trends: selected,
		Source: sourceName,
		Limit:  filter.Limit,
		Total:  len(selected),
	})
}

// RefreshTrends aggregates a fresh list, bypassing the cache
func (h *TrendHandler) RefreshTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.service.Refresh(r.Context())
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Failed to refresh trends", err)
		return
	}

	respondWithJSON(w, http.StatusOK, TrendsResponse{
		Trends: trends,
		Source: "all",
		Limit:  len(trends),
		Total:  len(trends),
	})
}

// GetHistory returns recent aggregation snapshots
func (h *TrendHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, r, http.StatusBadRequest, "Invalid limit", nil)
			return
		}
		limit = n
	}

	snapshots, err := h.service.History(r.Context(), limit)
	if err != nil {
		if errors.Is(err, listening.ErrHistoryDisabled) {
			respondWithError(w, r, http.StatusServiceUnavailable, "Trend history is not enabled", nil)
		} else {
			respondWithError(w, r, http.StatusInternalServerError, "Failed to get trend history", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": snapshots,
		"total":     len(snapshots),
	})
}

func parseTrendFilter(r *http.Request) (trend.Filter, string, error) {
	filter := trend.Filter{Limit: DefaultTrendLimit}
	sourceName := "all"

	if raw := strings.TrimSpace(r.URL.Query().Get("source")); raw != "" && !strings.EqualFold(raw, "all") {
		source, ok := trend.ParseSource(raw)
		if !ok {
			return filter, "", errors.New("Unknown source")
		}
		filter.Source = source
		sourceName = string(source)
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return filter, "", errors.New("Invalid limit")
		}
		if n > MaxTrendLimit {
			n = MaxTrendLimit
		}
		filter.Limit = n
	}

	return filter, sourceName, nil
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, r *http.Request, code int, message string, err error) {
	response := map[string]string{"error": message}

	if err != nil && code >= 500 {
		hlog.FromRequest(r).Error().Err(err).Int("code", code).Msg(message)
	}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
