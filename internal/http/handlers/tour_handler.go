package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roamio/tours-api/internal/apperr"
	"github.com/roamio/tours-api/internal/domain"
	"github.com/roamio/tours-api/internal/http/response"
	"github.com/roamio/tours-api/internal/listing"
	"github.com/roamio/tours-api/internal/platform/cache"
	"github.com/roamio/tours-api/internal/repo/postgres"
	"github.com/roamio/tours-api/pkg/logger"
)

const (
	topTenCacheKey = "tours:topten"
	statsCacheKey  = "tours:stats"
	tourCacheTTL   = 10 * time.Minute
)

type TourHandler struct {
	tours postgres.ToursRepo
	cache *cache.Cache
}

func NewTourHandler(tours postgres.ToursRepo, c *cache.Cache) *TourHandler {
	return &TourHandler{tours: tours, cache: c}
}

// TopTen lists the ten most expensive tours; the preset overrides any
// sort/paging from the query string.
func (h *TourHandler) TopTen(w http.ResponseWriter, r *http.Request) error {
	var tours []domain.Tour
	if h.cacheGet(r, topTenCacheKey, &tours) {
		response.OKList(w, tours, len(tours))
		return nil
	}

	q := listing.Query{
		Sort:  []listing.SortField{{Name: "price", Desc: true}},
		Page:  1,
		Limit: 10,
	}
	tours, err := h.tours.FindAll(r.Context(), q)
	if err != nil {
		return err
	}
	h.cacheSet(r, topTenCacheKey, tours)

	response.OKList(w, tours, len(tours))
	return nil
}

// Stats aggregates premium tours (price >= 20000) by trip length.
func (h *TourHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	var stats []domain.TourStats
	if h.cacheGet(r, statsCacheKey, &stats) {
		response.OKList(w, stats, len(stats))
		return nil
	}

	stats, err := h.tours.Stats(r.Context())
	if err != nil {
		return err
	}
	h.cacheSet(r, statsCacheKey, stats)

	response.OKList(w, stats, len(stats))
	return nil
}

func (h *TourHandler) Search(w http.ResponseWriter, r *http.Request) error {
	term := r.URL.Query().Get("q")
	if term == "" {
		return apperr.Validation("Missing search query")
	}
	tours, err := h.tours.Search(r.Context(), term)
	if err != nil {
		return err
	}
	response.OKList(w, tours, len(tours))
	return nil
}

func (h *TourHandler) BySlug(w http.ResponseWriter, r *http.Request) error {
	tour, err := h.tours.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return err
	}
	response.OK(w, tour)
	return nil
}

func (h *TourHandler) cacheGet(r *http.Request, key string, dest any) bool {
	if h.cache == nil {
		return false
	}
	hit, err := h.cache.GetJSON(r.Context(), key, dest)
	if err != nil {
		logger.WarnContext(r.Context(), "cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (h *TourHandler) cacheSet(r *http.Request, key string, v any) {
	if h.cache == nil {
		return
	}
	if err := h.cache.SetJSON(r.Context(), key, v, tourCacheTTL); err != nil {
		logger.WarnContext(r.Context(), "cache write failed", "key", key, "error", err)
	}
}
