package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roamio/tours-api/internal/domain"
	"github.com/roamio/tours-api/internal/listing"
)

type ReviewsRepo interface {
	Insert(ctx context.Context, req *domain.CreateReviewRequest) (*domain.Review, error)
	FindByID(ctx context.Context, id int64) (*domain.Review, error)
	FindAll(ctx context.Context, q listing.Query) ([]domain.Review, error)
	ListByTour(ctx context.Context, tourID int64) ([]domain.Review, error)
	DeleteByID(ctx context.Context, id int64) error
}

const reviewCols = `id, title, body, rating, user_id, tour_id, created_at`

var reviewListCols = map[string]string{
	"rating":     "rating",
	"tour_id":    "tour_id",
	"user_id":    "user_id",
	"created_at": "created_at",
}

type ReviewsRepoImpl struct{ pool *pgxpool.Pool }

func NewReviewsRepo(pool *pgxpool.Pool) *ReviewsRepoImpl { return &ReviewsRepoImpl{pool: pool} }

func scanReview(row rowScanner) (*domain.Review, error) {
	var rv domain.Review
	if err := row.Scan(
		&rv.ID, &rv.Title, &rv.Text, &rv.Rating, &rv.UserID, &rv.TourID, &rv.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewsRepoImpl) Insert(ctx context.Context, req *domain.CreateReviewRequest) (*domain.Review, error) {
	q := `
INSERT INTO reviews (title, body, rating, user_id, tour_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + reviewCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rv, err := scanReview(r.pool.QueryRow(ctx, q, req.Title, req.Text, req.Rating, req.UserID, req.TourID))
	return rv, classify(err, "review")
}

func (r *ReviewsRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Review, error) {
	q := `SELECT ` + reviewCols + ` FROM reviews WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rv, err := scanReview(r.pool.QueryRow(ctx, q, id))
	return rv, classify(err, "review")
}

func (r *ReviewsRepoImpl) FindAll(ctx context.Context, lq listing.Query) ([]domain.Review, error) {
	q, args := listSQL(`SELECT `+reviewCols+` FROM reviews`, "", reviewListCols, lq, "created_at DESC")
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.query(ctx, q, args...)
}

func (r *ReviewsRepoImpl) ListByTour(ctx context.Context, tourID int64) ([]domain.Review, error) {
	q := `SELECT ` + reviewCols + ` FROM reviews WHERE tour_id = $1 ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.query(ctx, q, tourID)
}

func (r *ReviewsRepoImpl) DeleteByID(ctx context.Context, id int64) error {
	const q = `DELETE FROM reviews WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return classify(err, "review")
	}
	if tag.RowsAffected() == 0 {
		return classify(pgx.ErrNoRows, "review")
	}
	return nil
}

func (r *ReviewsRepoImpl) query(ctx context.Context, q string, args ...any) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, classify(err, "review")
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, classify(err, "review")
		}
		reviews = append(reviews, *rv)
	}
	return reviews, classify(rows.Err(), "review")
}
