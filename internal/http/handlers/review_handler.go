package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roamio/tours-api/internal/apperr"
	"github.com/roamio/tours-api/internal/domain"
	"github.com/roamio/tours-api/internal/http/middleware"
	"github.com/roamio/tours-api/internal/http/response"
	"github.com/roamio/tours-api/internal/repo/postgres"
	"github.com/roamio/tours-api/pkg/events"
	"github.com/roamio/tours-api/pkg/logger"
)

type ReviewHandler struct {
	reviews postgres.ReviewsRepo
	bus     events.Publisher
}

func NewReviewHandler(reviews postgres.ReviewsRepo, bus events.Publisher) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, bus: bus}
}

func (h *ReviewHandler) ListForTour(w http.ResponseWriter, r *http.Request) error {
	tourID, err := tourIDParam(r)
	if err != nil {
		return err
	}
	reviews, err := h.reviews.ListByTour(r.Context(), tourID)
	if err != nil {
		return err
	}
	response.OKList(w, reviews, len(reviews))
	return nil
}

// CreateForTour files a review by the session user against the tour in the
// URL. Reviews are immutable afterwards; there is no update path.
func (h *ReviewHandler) CreateForTour(w http.ResponseWriter, r *http.Request) error {
	tourID, err := tourIDParam(r)
	if err != nil {
		return err
	}
	user := middleware.CurrentUser(r)

	req, err := decodeBodyUnvalidated[domain.CreateReviewRequest](r)
	if err != nil {
		return err
	}
	req.UserID = user.ID
	req.TourID = tourID
	if err := validateStruct(req); err != nil {
		return err
	}

	review, err := h.reviews.Insert(r.Context(), req)
	if err != nil {
		return err
	}

	if err := h.bus.Publish(r.Context(), events.ReviewCreated, events.ReviewCreatedEvent{
		ReviewID:  review.ID,
		TourID:    review.TourID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		CreatedAt: review.CreatedAt,
	}); err != nil {
		logger.WarnContext(r.Context(), "failed to publish review event", "error", err, "review_id", review.ID)
	}

	response.Created(w, review)
	return nil
}

func tourIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tourId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid tour ID")
	}
	return id, nil
}
