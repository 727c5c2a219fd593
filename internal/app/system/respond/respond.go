// Package respond writes JSON responses and decodes JSON request bodies.
//
// Error bodies keep the "message" key the web client already reads and add a
// stable machine-readable "code":
//
//	{"message": "Invalid credentials", "code": "invalid_credentials"}
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/hopenest/internal/app/system/inputval"
	"go.uber.org/zap"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// Error codes.
const (
	CodeValidation   = "validation_failed"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeUpload       = "upload_rejected"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal_error"
	CodeUnavailable  = "unavailable"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// Validator is implemented by request schemas.
type Validator interface {
	Validate() error
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes an error body.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Message: message, Code: code})
}

// BadRequest writes a 400. Validation errors carry their field in details;
// anything else is reported with a generic message.
func BadRequest(w http.ResponseWriter, err error) {
	if ve, ok := inputval.As(err); ok {
		body := ErrorBody{Message: ve.Message, Code: CodeValidation}
		if ve.Field != "" {
			body.Details = map[string]string{"field": ve.Field}
		}
		JSON(w, http.StatusBadRequest, body)
		return
	}
	Error(w, http.StatusBadRequest, CodeValidation, "Invalid request")
}

// NotFound writes a 404 with message.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, CodeNotFound, message)
}

// Internal logs err and writes a 500 carrying message only.
func Internal(w http.ResponseWriter, log *zap.Logger, message string, err error, fields ...zap.Field) {
	log.Error(message, append(fields, zap.Error(err))...)
	Error(w, http.StatusInternalServerError, CodeInternal, message)
}

// Decode reads a JSON body into dst and runs dst.Validate when dst is a
// Validator. An empty body decodes as the zero value. Malformed JSON and
// validation failures come back as *inputval.Error.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return inputval.New("", "Request body too large")
		}
		return inputval.New("", "Invalid JSON body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return inputval.New("", "Invalid JSON body")
	}

	if v, ok := dst.(Validator); ok {
		return v.Validate()
	}
	return nil
}
