package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roamio/tours-api/internal/domain"
	"github.com/roamio/tours-api/internal/http/middleware"
	"github.com/roamio/tours-api/internal/http/response"
	"github.com/roamio/tours-api/internal/repo/postgres"
)

// UserRoutes wires the auth flow, the self-service routes and the admin-only
// user collection.
func UserRoutes(ah *AuthHandler, uh *UserHandler, mw *middleware.Auth, users postgres.UsersRepo) http.Handler {
	r := chi.NewRouter()

	r.Post("/signup", response.Handle(ah.Signup))
	r.Post("/login", response.Handle(ah.Login))
	r.Get("/logout", response.Handle(ah.Logout))
	r.Post("/forgotpassword", response.Handle(ah.ForgotPassword))
	r.Patch("/resetpassword/{token}", response.Handle(ah.ResetPassword))

	// everything below requires a session
	r.Group(func(r chi.Router) {
		r.Use(mw.Protect)

		r.Patch("/updatepassword", response.Handle(ah.UpdatePassword))
		r.Get("/getUser", response.Handle(uh.GetMe))
		r.Patch("/updateUser", response.Handle(uh.UpdateMe))
		r.Delete("/deleteUser", response.Handle(uh.DeleteMe))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RestrictTo(domain.RoleAdmin))

			r.Get("/", response.Handle(GetAll[domain.User](users)))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", response.Handle(GetOne[domain.User](users)))
				r.Patch("/", response.Handle(UpdateOne[domain.User, domain.UpdateUserRequest](users)))
				r.Delete("/", response.Handle(DeleteOne(users)))
			})
		})
	})

	return r
}

// TourRoutes wires the public tour reads, the admin/lead-guide writes and the
// nested reviews collection.
func TourRoutes(th *TourHandler, rh *ReviewHandler, mw *middleware.Auth, tours postgres.ToursRepo) http.Handler {
	r := chi.NewRouter()

	r.Get("/topten", response.Handle(th.TopTen))
	r.Get("/getstats", response.Handle(th.Stats))
	r.Get("/search", response.Handle(th.Search))
	r.Get("/search/{slug}", response.Handle(th.BySlug))

	r.Get("/", response.Handle(GetAll[domain.Tour](tours)))
	r.Get("/{id}", response.Handle(GetOne[domain.Tour](tours)))

	r.Group(func(r chi.Router) {
		r.Use(mw.Protect, middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide))

		r.Post("/", response.Handle(CreateOne[domain.Tour, domain.CreateTourRequest](tours)))
		r.Patch("/{id}", response.Handle(UpdateOne[domain.Tour, domain.UpdateTourRequest](tours)))
		r.Delete("/{id}", response.Handle(DeleteOne(tours)))
	})

	r.Route("/{tourId}/reviews", func(r chi.Router) {
		r.Get("/", response.Handle(rh.ListForTour))
		r.With(mw.Protect).Post("/", response.Handle(rh.CreateForTour))
	})

	return r
}

// ReviewRoutes exposes the flat review collection: public reads, admin delete.
func ReviewRoutes(mw *middleware.Auth, reviews postgres.ReviewsRepo) http.Handler {
	r := chi.NewRouter()

	r.Get("/", response.Handle(GetAll[domain.Review](reviews)))
	r.Get("/{id}", response.Handle(GetOne[domain.Review](reviews)))

	r.With(mw.Protect, middleware.RestrictTo(domain.RoleAdmin)).
		Delete("/{id}", response.Handle(DeleteOne(reviews)))

	return r
}
