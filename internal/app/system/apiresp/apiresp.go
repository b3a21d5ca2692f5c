// Package apiresp writes the JSON bodies shared by every /api handler.
package apiresp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/ecahub/internal/app/system/validate"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrorBody is the shape of every non-2xx JSON response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, v any)      { WriteJSON(w, http.StatusOK, v) }
func Created(w http.ResponseWriter, v any) { WriteJSON(w, http.StatusCreated, v) }

func NotFound(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusNotFound, ErrorBody{Error: msg})
}

func BadRequest(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: msg})
}

func Conflict(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusConflict, ErrorBody{Error: msg})
}

func Forbidden(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusForbidden, ErrorBody{Error: msg})
}

// Invalid reports a validation failure. *validate.Error carries per-field
// rules; anything else becomes a plain 400.
func Invalid(w http.ResponseWriter, err error) {
	var ve *validate.Error
	if errors.As(err, &ve) {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: "Validation failed", Fields: ve.Fields})
		return
	}
	BadRequest(w, "Invalid request")
}

// Internal logs the cause and answers with a generic 500 body.
func Internal(w http.ResponseWriter, r *http.Request, log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err), zap.String("path", r.URL.Path), zap.String("method", r.Method))
	WriteJSON(w, http.StatusInternalServerError, ErrorBody{Error: "Internal server error"})
}

// DecodeJSON reads a JSON body into dst, rejecting unknown fields and
// bodies over 1 MiB.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose body may be empty.
func DecodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := DecodeJSON(w, r, dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ParamID parses the chi URL parameter name as an ObjectID. On failure it
// writes a 400 and returns false.
func ParamID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		BadRequest(w, "Invalid id")
		return primitive.NilObjectID, false
	}
	return oid, true
}

// QueryID parses an optional ObjectID query parameter. An absent value
// yields nil; a malformed one writes a 400 and returns false.
func QueryID(w http.ResponseWriter, r *http.Request, name string) (*primitive.ObjectID, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	oid, err := primitive.ObjectIDFromHex(v)
	if err != nil {
		BadRequest(w, "Invalid "+name)
		return nil, false
	}
	return &oid, true
}
