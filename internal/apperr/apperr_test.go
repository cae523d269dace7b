package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/roamio/tours-api/internal/apperr"
)

func TestFrom_PassesThroughAppErrors(t *testing.T) {
	orig := apperr.NotFound("No tour found with that ID")
	wrapped := fmt.Errorf("loading tour: %w", orig)

	got := apperr.From(wrapped)
	if got != orig {
		t.Fatalf("Expected the original error, got %v", got)
	}
}

func TestFrom_WrapsUnknownErrors(t *testing.T) {
	got := apperr.From(errors.New("connection refused"))
	if got.Status != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", got.Status)
	}
	if got.Message != "Something went very wrong!" {
		t.Fatalf("Unexpected message: %q", got.Message)
	}
	if got.Err == nil {
		t.Fatal("Original error must be retained for logging")
	}
}

func TestIsStatus(t *testing.T) {
	err := fmt.Errorf("outer: %w", apperr.Forbidden("You do not have permission to perform this action"))
	if !apperr.IsStatus(err, http.StatusForbidden) {
		t.Fatal("Expected 403 match")
	}
	if apperr.IsStatus(err, http.StatusNotFound) {
		t.Fatal("Unexpected 404 match")
	}
}

func TestWithErr_KeepsTaxonomy(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := apperr.Validation("Duplicate field value. Please use another value!").WithErr(cause)

	if err.Status != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", err.Status)
	}
	if !errors.Is(err, cause) {
		t.Fatal("Cause must unwrap")
	}
}
