package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roamio/tours-api/internal/domain"
	"github.com/roamio/tours-api/internal/listing"
)

type ToursRepo interface {
	Insert(ctx context.Context, req *domain.CreateTourRequest) (*domain.Tour, error)
	FindByID(ctx context.Context, id int64) (*domain.Tour, error)
	FindAll(ctx context.Context, q listing.Query) ([]domain.Tour, error)
	UpdateByID(ctx context.Context, id int64, patch *domain.UpdateTourRequest) (*domain.Tour, error)
	DeleteByID(ctx context.Context, id int64) error
	FindBySlug(ctx context.Context, s string) (*domain.Tour, error)
	Search(ctx context.Context, term string) ([]domain.Tour, error)
	Stats(ctx context.Context) ([]domain.TourStats, error)
}

const tourCols = `id, title, slug, days, price, places, inclusions, optional,
	img_link, page, guide_id, created_at`

var tourListCols = map[string]string{
	"title":      "title",
	"slug":       "slug",
	"days":       "days",
	"price":      "price",
	"created_at": "created_at",
}

type ToursRepoImpl struct{ pool *pgxpool.Pool }

func NewToursRepo(pool *pgxpool.Pool) *ToursRepoImpl { return &ToursRepoImpl{pool: pool} }

func scanTour(row rowScanner) (*domain.Tour, error) {
	var t domain.Tour
	if err := row.Scan(
		&t.ID, &t.Title, &t.Slug, &t.Days, &t.Price, &t.Places, &t.Inclusions,
		&t.Optional, &t.ImgLink, &t.Page, &t.GuideID, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ToursRepoImpl) Insert(ctx context.Context, req *domain.CreateTourRequest) (*domain.Tour, error) {
	q := `
INSERT INTO tours (title, slug, days, price, places, inclusions, optional, img_link, page, guide_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + tourCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	t, err := scanTour(r.pool.QueryRow(ctx, q,
		req.Title, slug.Make(req.Title), req.Days, req.Price, req.Places,
		req.Inclusions, req.Optional, req.ImgLink, req.Page, req.GuideID,
	))
	return t, classify(err, "tour")
}

func (r *ToursRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Tour, error) {
	q := `SELECT ` + tourCols + ` FROM tours WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	t, err := scanTour(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, classify(err, "tour")
	}
	if err := r.populateReviews(ctx, t); err != nil {
		return nil, classify(err, "tour")
	}
	return t, nil
}

func (r *ToursRepoImpl) FindAll(ctx context.Context, lq listing.Query) ([]domain.Tour, error) {
	q, args := listSQL(`SELECT `+tourCols+` FROM tours`, "", tourListCols, lq, "id ASC")
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.queryTours(ctx, q, args...)
}

func (r *ToursRepoImpl) UpdateByID(ctx context.Context, id int64, patch *domain.UpdateTourRequest) (*domain.Tour, error) {
	sets, args := []string{}, []any{id}
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
		// slug follows the title
		set("slug", slug.Make(*patch.Title))
	}
	if patch.Days != nil {
		set("days", *patch.Days)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.Places != nil {
		set("places", *patch.Places)
	}
	if patch.Inclusions != nil {
		set("inclusions", *patch.Inclusions)
	}
	if patch.Optional != nil {
		set("optional", *patch.Optional)
	}
	if patch.ImgLink != nil {
		set("img_link", *patch.ImgLink)
	}
	if patch.Page != nil {
		set("page", patch.Page)
	}
	if patch.GuideID != nil {
		set("guide_id", *patch.GuideID)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	q := `UPDATE tours SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + tourCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	t, err := scanTour(r.pool.QueryRow(ctx, q, args...))
	return t, classify(err, "tour")
}

func (r *ToursRepoImpl) DeleteByID(ctx context.Context, id int64) error {
	const q = `DELETE FROM tours WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return classify(err, "tour")
	}
	if tag.RowsAffected() == 0 {
		return classify(pgx.ErrNoRows, "tour")
	}
	return nil
}

// FindBySlug returns the tour with its reviews and guide populated for the
// detail page.
func (r *ToursRepoImpl) FindBySlug(ctx context.Context, s string) (*domain.Tour, error) {
	q := `SELECT ` + tourCols + ` FROM tours WHERE slug = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	t, err := scanTour(r.pool.QueryRow(ctx, q, s))
	if err != nil {
		return nil, classify(err, "tour")
	}
	if err := r.populateReviews(ctx, t); err != nil {
		return nil, classify(err, "tour")
	}
	if t.GuideID != nil {
		const gq = `SELECT id, name, email, role FROM users WHERE id = $1 AND active`
		var g domain.User
		if err := r.pool.QueryRow(ctx, gq, *t.GuideID).Scan(&g.ID, &g.Name, &g.Email, &g.Role); err == nil {
			t.Guide = &g
		}
	}
	return t, nil
}

func (r *ToursRepoImpl) Search(ctx context.Context, term string) ([]domain.Tour, error) {
	q := `SELECT ` + tourCols + ` FROM tours
WHERE to_tsvector('english', title || ' ' || array_to_string(places, ' ')) @@ plainto_tsquery('english', $1)
ORDER BY id ASC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.queryTours(ctx, q, term)
}

func (r *ToursRepoImpl) Stats(ctx context.Context) ([]domain.TourStats, error) {
	const q = `
SELECT days, COUNT(*), AVG(price), MIN(price), MAX(price)
FROM tours
WHERE price >= 20000
GROUP BY days
ORDER BY days`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, classify(err, "tour")
	}
	defer rows.Close()

	stats := []domain.TourStats{}
	for rows.Next() {
		var s domain.TourStats
		if err := rows.Scan(&s.Days, &s.Tours, &s.AveragePrice, &s.MinPrice, &s.MaxPrice); err != nil {
			return nil, classify(err, "tour")
		}
		stats = append(stats, s)
	}
	return stats, classify(rows.Err(), "tour")
}

func (r *ToursRepoImpl) queryTours(ctx context.Context, q string, args ...any) ([]domain.Tour, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, classify(err, "tour")
	}
	defer rows.Close()

	tours := []domain.Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, classify(err, "tour")
		}
		tours = append(tours, *t)
	}
	return tours, classify(rows.Err(), "tour")
}

func (r *ToursRepoImpl) populateReviews(ctx context.Context, t *domain.Tour) error {
	const q = `
SELECT r.id, r.title, r.body, r.rating, r.user_id, r.tour_id, r.created_at, u.name
FROM reviews r
JOIN users u ON u.id = r.user_id
WHERE r.tour_id = $1
ORDER BY r.created_at DESC`
	rows, err := r.pool.Query(ctx, q, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	t.Reviews = []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		var authorName string
		if err := rows.Scan(&rv.ID, &rv.Title, &rv.Text, &rv.Rating, &rv.UserID, &rv.TourID, &rv.CreatedAt, &authorName); err != nil {
			return err
		}
		rv.Author = &domain.User{ID: rv.UserID, Name: authorName}
		t.Reviews = append(t.Reviews, rv)
	}
	return rows.Err()
}
