package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roamio/tours-api/internal/apperr"
	"github.com/roamio/tours-api/internal/domain"
	"github.com/roamio/tours-api/internal/http/middleware"
	"github.com/roamio/tours-api/internal/http/response"
	"github.com/roamio/tours-api/internal/platform/auth"
	"github.com/roamio/tours-api/internal/platform/mailer"
	"github.com/roamio/tours-api/internal/repo/postgres"
	"github.com/roamio/tours-api/pkg/config"
	"github.com/roamio/tours-api/pkg/events"
	"github.com/roamio/tours-api/pkg/logger"
)

type AuthHandler struct {
	users  postgres.UsersRepo
	tokens *auth.TokenIssuer
	mail   mailer.Service
	bus    events.Publisher
	cfg    *config.Config
}

func NewAuthHandler(users postgres.UsersRepo, tokens *auth.TokenIssuer, mail mailer.Service, bus events.Publisher, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, mail: mail, bus: bus, cfg: cfg}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeBody[domain.SignupRequest](r)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperr.Internal(err)
	}

	user, err := h.users.Create(r.Context(), req, hash)
	if err != nil {
		return err
	}

	if err := h.bus.Publish(r.Context(), events.UserSignedUp, events.UserSignedUpEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}); err != nil {
		logger.WarnContext(r.Context(), "failed to publish signup event", "error", err, "user_id", user.ID)
	}

	return h.sendSession(w, user, "success")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeBody[domain.LoginRequest](r)
	if err != nil {
		return err
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		return apperr.NotAuthenticated("Incorrect email or password")
	}

	return h.sendSession(w, user, "success")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "loggedout",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Path:     "/",
	})
	response.JSON(w, http.StatusOK, response.Envelope{Status: "success"})
	return nil
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeBody[domain.ForgotPasswordRequest](r)
	if err != nil {
		return err
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		return apperr.NotFound("There is no user with email address.")
	}

	raw, hash := auth.NewResetToken()
	expires := time.Now().Add(h.cfg.Auth.ResetTokenTTL)
	if err := h.users.SetResetToken(r.Context(), user.ID, hash, expires); err != nil {
		return err
	}

	resetURL := h.cfg.Server.BaseURL + "/user/resetpassword/" + raw
	if err := h.mail.SendPasswordReset(user.Email, user.Name, resetURL); err != nil {
		// compensate: the stored token is useless if the email never left
		if rbErr := h.users.ClearResetToken(r.Context(), user.ID); rbErr != nil {
			logger.ErrorContext(r.Context(), "failed to roll back reset token", "error", rbErr, "user_id", user.ID)
		}
		return apperr.EmailDelivery("There was an error sending the email. Try again later!", err)
	}

	response.Message(w, http.StatusOK, "Token sent to email!")
	return nil
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) error {
	raw := chi.URLParam(r, "token")
	req, err := decodeBody[domain.ResetPasswordRequest](r)
	if err != nil {
		return err
	}

	user, err := h.users.FindByResetToken(r.Context(), auth.HashResetToken(raw))
	if err != nil {
		return apperr.InvalidOrExpiredToken("Token is invalid or has expired")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := h.users.SetPassword(r.Context(), user.ID, hash); err != nil {
		return err
	}

	if err := h.bus.Publish(r.Context(), events.UserPasswordReset, events.UserPasswordResetEvent{
		UserID:  user.ID,
		Email:   user.Email,
		ResetAt: time.Now(),
	}); err != nil {
		logger.WarnContext(r.Context(), "failed to publish password reset event", "error", err, "user_id", user.ID)
	}

	return h.sendSession(w, user, "Password reset successfully")
}

// UpdatePassword changes the session user's password after verifying the
// current one. The target is always the authenticated user, never an id from
// the URL.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) error {
	user := middleware.CurrentUser(r)
	req, err := decodeBody[domain.UpdatePasswordRequest](r)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		return apperr.IncorrectPassword("Password entered is Incorrect")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := h.users.SetPassword(r.Context(), user.ID, hash); err != nil {
		return err
	}

	return h.sendSession(w, user, "Password updated successfully")
}

// sendSession issues a fresh token, sets the session cookie and writes the
// user back without its password.
func (h *AuthHandler) sendSession(w http.ResponseWriter, user *domain.User, message string) error {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		return apperr.Internal(err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(time.Duration(h.cfg.Auth.CookieTTLDays) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})

	response.JSON(w, http.StatusOK, response.Envelope{
		Status:  "success",
		Message: message,
		Token:   token,
		Data:    user,
	})
	return nil
}
