// Package handlers holds the HTTP handlers. The generic CRUD factory is
// parameterized by entity, create-request and patch types; domain handlers
// compose it with their collection repos instead of re-writing the same five
// operations per resource.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/roamio/tours-api/internal/apperr"
	"github.com/roamio/tours-api/internal/http/response"
	"github.com/roamio/tours-api/internal/listing"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Creator[E any, C any] interface {
	Insert(ctx context.Context, req *C) (*E, error)
}

type Finder[E any] interface {
	FindByID(ctx context.Context, id int64) (*E, error)
}

type Lister[E any] interface {
	FindAll(ctx context.Context, q listing.Query) ([]E, error)
}

type Updater[E any, P any] interface {
	UpdateByID(ctx context.Context, id int64, patch *P) (*E, error)
}

type Deleter interface {
	DeleteByID(ctx context.Context, id int64) error
}

// CreateOne inserts a document decoded from the request body.
func CreateOne[E any, C any](store Creator[E, C]) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		req, err := decodeBody[C](r)
		if err != nil {
			return err
		}
		entity, err := store.Insert(r.Context(), req)
		if err != nil {
			return err
		}
		response.Created(w, entity)
		return nil
	}
}

// GetOne reads a document by the {id} route param.
func GetOne[E any](store Finder[E]) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := idParam(r)
		if err != nil {
			return err
		}
		entity, err := store.FindByID(r.Context(), id)
		if err != nil {
			return err
		}
		response.OK(w, entity)
		return nil
	}
}

// GetAll reads a page of documents with filter/sort/field-selection derived
// from the query string.
func GetAll[E any](store Lister[E]) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		q := listing.Parse(r.URL.Query())
		entities, err := store.FindAll(r.Context(), q)
		if err != nil {
			return err
		}
		if len(q.Fields) > 0 {
			projected, err := project(entities, q.Fields)
			if err != nil {
				return err
			}
			response.OKList(w, projected, len(entities))
			return nil
		}
		response.OKList(w, entities, len(entities))
		return nil
	}
}

// UpdateOne applies a partial update with validation re-run on the patch.
func UpdateOne[E any, P any](store Updater[E, P]) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := idParam(r)
		if err != nil {
			return err
		}
		patch, err := decodeBody[P](r)
		if err != nil {
			return err
		}
		entity, err := store.UpdateByID(r.Context(), id, patch)
		if err != nil {
			return err
		}
		response.OK(w, entity)
		return nil
	}
}

// DeleteOne removes a document by id and returns no content.
func DeleteOne(store Deleter) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := idParam(r)
		if err != nil {
			return err
		}
		if err := store.DeleteByID(r.Context(), id); err != nil {
			return err
		}
		response.NoContent(w)
		return nil
	}
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid ID")
	}
	return id, nil
}

func decodeBody[T any](r *http.Request) (*T, error) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperr.Validation("Invalid JSON body").WithErr(err)
	}
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// decodeBodyUnvalidated is for handlers that fill server-side fields before
// running validation themselves.
func decodeBodyUnvalidated[T any](r *http.Request) (*T, error) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperr.Validation("Invalid JSON body").WithErr(err)
	}
	return &req, nil
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return apperr.Validation("Invalid input data: " + strings.Join(fields, ", ")).WithErr(err)
	}
	return apperr.Validation("Invalid input data").WithErr(err)
}

// project narrows each entity to the requested fields (id always kept) by
// round-tripping through JSON, matching the response field names.
func project[E any](entities []E, fields []string) ([]map[string]json.RawMessage, error) {
	keep := make(map[string]bool, len(fields)+1)
	keep["id"] = true
	for _, f := range fields {
		keep[f] = true
	}

	out := make([]map[string]json.RawMessage, 0, len(entities))
	for _, e := range entities {
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, apperr.Internal(err)
		}
		for k := range m {
			if !keep[k] {
				delete(m, k)
			}
		}
		out = append(out, m)
	}
	return out, nil
}
