package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/roamio/tours-api/internal/apperr"
	"github.com/roamio/tours-api/internal/domain"
	"github.com/roamio/tours-api/internal/http/middleware"
	"github.com/roamio/tours-api/internal/http/response"
	"github.com/roamio/tours-api/internal/repo/postgres"
)

type UserHandler struct {
	users postgres.UsersRepo
}

func NewUserHandler(users postgres.UsersRepo) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) error {
	response.OK(w, middleware.CurrentUser(r))
	return nil
}

// UpdateMe accepts only the allow-listed profile fields. Password keys are
// rejected outright so nobody sneaks a hash-less password into the row.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) error {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return apperr.Validation("Invalid JSON body").WithErr(err)
	}
	if _, ok := body["password"]; ok {
		return apperr.Validation("This route is not for password updates. Please use /updatepassword.")
	}
	if _, ok := body["confirmPassword"]; ok {
		return apperr.Validation("This route is not for password updates. Please use /updatepassword.")
	}

	var req domain.UpdateSelfRequest
	if raw, ok := body["name"]; ok {
		if err := json.Unmarshal(raw, &req.Name); err != nil {
			return apperr.Validation("Invalid JSON body").WithErr(err)
		}
	}
	if raw, ok := body["email"]; ok {
		if err := json.Unmarshal(raw, &req.Email); err != nil {
			return apperr.Validation("Invalid JSON body").WithErr(err)
		}
	}
	if err := validateStruct(&req); err != nil {
		return err
	}

	user := middleware.CurrentUser(r)
	updated, err := h.users.UpdateSelf(r.Context(), user.ID, &req)
	if err != nil {
		return err
	}
	response.OK(w, updated)
	return nil
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) error {
	user := middleware.CurrentUser(r)
	if err := h.users.DeleteByID(r.Context(), user.ID); err != nil {
		return err
	}
	response.NoContent(w)
	return nil
}
