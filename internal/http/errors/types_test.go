package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithStatus_CopiesWithoutMutating(t *testing.T) {
	gate := ErrMethodNotSet.WithStatus(http.StatusBadRequest)

	if gate.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("copy status = %d", gate.HTTPStatus)
	}
	if gate.Code != ErrMethodNotSet.Code {
		t.Fatalf("copy must keep business code, got %d", gate.Code)
	}
	// la variable global no debe mutar
	if ErrMethodNotSet.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("base error mutated: %d", ErrMethodNotSet.HTTPStatus)
	}
}

func TestWithCause_Unwrap(t *testing.T) {
	cause := fmt.Errorf("pool exhausted")
	err := ErrInternal.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable via errors.Is")
	}
	if ErrInternal.Err != nil {
		t.Fatal("base error mutated")
	}
}

func TestFromError(t *testing.T) {
	if got := FromError(ErrUserNotFound); got != ErrUserNotFound {
		t.Fatalf("AppError should pass through, got %+v", got)
	}

	plain := fmt.Errorf("boom")
	got := FromError(plain)
	if got.Code != ErrInternal.Code || got.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("plain error should map to internal, got %+v", got)
	}
	if !errors.Is(got, plain) {
		t.Fatal("cause lost in conversion")
	}
}

func TestWriteError_Serialization(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrTwoFactorRequired)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Code    int    `json:"error_code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != 4005 || body.Message == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestWriteError_GenericError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("unexpected"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	// la causa jamás viaja al cliente
	if body["message"] == "unexpected" {
		t.Fatal("internal cause leaked to the client")
	}
}
