package apiresp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/ecahub/internal/app/system/validate"
	"go.uber.org/zap"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%q)", err, rec.Body.String())
	}
	return body
}

func TestInternal_HidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/schools", nil)

	Internal(rec, req, zap.NewNop(), "list schools", errors.New("connection refused to 10.0.0.4"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body.Error != "Internal server error" {
		t.Errorf("error = %q", body.Error)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.4") {
		t.Error("internal cause leaked to client")
	}
}

func TestInvalid_WithFields(t *testing.T) {
	rec := httptest.NewRecorder()
	Invalid(rec, &validate.Error{Fields: validate.FieldErrors{"name": "required"}})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body.Fields["name"] != "required" {
		t.Errorf("fields = %v", body.Fields)
	}
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "School not found")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode(t, rec).Error; got != "School not found" {
		t.Errorf("error = %q", got)
	}
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	var dst struct {
		Name string `json:"name"`
	}
	if err := DecodeJSON(rec, req, &dst); err == nil {
		t.Error("expected error for unknown field")
	}
}
