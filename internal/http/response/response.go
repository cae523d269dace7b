package response

import (
	"encoding/json"
	"net/http"

	"github.com/roamio/tours-api/internal/apperr"
	"github.com/roamio/tours-api/pkg/logger"
)

// DevMode controls whether internal error details leak into 500 responses.
// Set once at startup.
var DevMode bool

// Envelope is the JSON shape shared by every endpoint.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token,omitempty"`
	Results *int        `json:"results,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HandlerFunc is an http handler that reports failures as errors instead of
// writing them itself; Handle routes those through the central error mapping.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

func Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			Error(w, r, err)
		}
	}
}

func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Status: "success", Data: data})
}

func OKList(w http.ResponseWriter, data interface{}, results int) {
	JSON(w, http.StatusOK, Envelope{Status: "success", Results: &results, Data: data})
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, Envelope{Status: "success", Data: data})
}

func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Status: "success", Message: message})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes err through the apperr taxonomy. Unexpected errors become 500s
// and their internals stay out of the body unless DevMode is on.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)

	if appErr.Status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", appErr.Code,
			"error", appErr.Error(),
		)
	}

	env := Envelope{Status: "error", Message: appErr.Message}
	if DevMode && appErr.Err != nil {
		env.Error = appErr.Err.Error()
	}
	JSON(w, appErr.Status, env)
}
