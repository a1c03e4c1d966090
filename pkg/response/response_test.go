package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAppError_Constructors(t *testing.T) {
	tests := []struct {
		err        *AppError
		wantStatus int
	}{
		{NewBadRequest("bad"), http.StatusBadRequest},
		{NewUnauthorized("no"), http.StatusUnauthorized},
		{NewForbidden("nope"), http.StatusForbidden},
		{NewNotFound("gone"), http.StatusNotFound},
		{NewConflict("dup"), http.StatusConflict},
		{NewTooManyRequests("slow down"), http.StatusTooManyRequests},
		{NewUpstreamError("down"), http.StatusBadGateway},
		{NewServerError("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if tt.err.HTTPStatus != tt.wantStatus {
			t.Errorf("HTTPStatus = %d, expected %d", tt.err.HTTPStatus, tt.wantStatus)
		}
		if tt.err.Error() == "" {
			t.Error("Error() should return the message")
		}
	}
}

func TestFail_AppErrorKeepsStatus(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Fail(c, NewNotFound("prompt not found"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", w.Code)
	}

	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if env.Success {
		t.Error("Success should be false")
	}
	if env.Error != "prompt not found" {
		t.Errorf("Error = %q", env.Error)
	}
}

func TestFail_WrappedAppErrorUnwrapped(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	wrapped := fmt.Errorf("loading prompt: %w", NewForbidden("not yours"))
	Fail(c, wrapped)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, expected 403 from wrapped AppError", w.Code)
	}
}

func TestFail_UnknownErrorIs500WithoutDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Fail(c, errors.New("pq: connection refused to db-internal:5432"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, expected 500", w.Code)
	}

	var env Envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	if env.Error != "internal server error" {
		t.Errorf("internal detail leaked: %q", env.Error)
	}
}

func TestTooManyRequests(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	TooManyRequests(c, "daily quota reached")

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, expected 429", w.Code)
	}

	var env Envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	if env.Success || env.Code != 429 || env.Error != "daily quota reached" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OK(c, gin.H{"value": 1})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, expected 200", w.Code)
	}

	var env Envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	if !env.Success || env.Code != 0 {
		t.Errorf("envelope = %+v", env)
	}
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Created(c, gin.H{"id": "abc"})

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, expected 201", w.Code)
	}
}
