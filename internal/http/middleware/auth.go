package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/roamio/tours-api/internal/apperr"
	"github.com/roamio/tours-api/internal/domain"
	"github.com/roamio/tours-api/internal/http/response"
	"github.com/roamio/tours-api/internal/platform/auth"
	"github.com/roamio/tours-api/pkg/logger"
)

type ctxKey string

const ctxUser ctxKey = "user"

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "jwt"

// UserStore is the slice of the users repo the auth chain needs.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

type Auth struct {
	tokens *auth.TokenIssuer
	users  UserStore
}

func NewAuth(tokens *auth.TokenIssuer, users UserStore) *Auth {
	return &Auth{tokens: tokens, users: users}
}

// Protect requires a valid session: token present, signature and expiry good,
// user still exists, password not changed since the token was issued. The
// resolved user lands in the request context.
func (a *Auth) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.resolve(r)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUser, user)
		ctx = context.WithValue(ctx, logger.UserIDKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IsLoggedIn runs the same resolution as Protect but never halts the chain;
// it only attaches the user when everything checks out. For optional
// personalization, never for protecting resources.
func (a *Auth) IsLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, err := a.resolve(r); err == nil {
			ctx := context.WithValue(r.Context(), ctxUser, user)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) resolve(r *http.Request) (*domain.User, error) {
	token := extractToken(r)
	if token == "" {
		return nil, apperr.NotAuthenticated("You are not logged in! Please log in to get access.")
	}

	session, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := a.users.FindByID(r.Context(), session.UserID)
	if err != nil {
		if apperr.IsStatus(err, http.StatusNotFound) {
			return nil, apperr.UserGone("The user belonging to this token does no longer exist.")
		}
		return nil, err
	}

	if user.PasswordChangedAfter(session.IssuedAt) {
		return nil, apperr.StalePassword("User recently changed password! Please log in again.")
	}

	return user, nil
}

func extractToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// RestrictTo gates an already-Protected route by role.
func RestrictTo(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			if user == nil {
				response.Error(w, r, apperr.NotAuthenticated("You are not logged in! Please log in to get access."))
				return
			}
			if !allowed[user.Role] {
				response.Error(w, r, apperr.Forbidden("You do not have permission to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentUser returns the user attached by Protect or IsLoggedIn, or nil.
func CurrentUser(r *http.Request) *domain.User {
	v := r.Context().Value(ctxUser)
	if v == nil {
		return nil
	}
	return v.(*domain.User)
}
