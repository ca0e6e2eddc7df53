package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := New(CodeConflict, "slot already taken", http.StatusConflict)
	if err.Error() != "CONFLICT: slot already taken" {
		t.Errorf("unexpected error string: %s", err.Error())
	}

	cause := errors.New("duplicate key")
	wrapped := Wrap(cause, CodeInternal, "insert failed", http.StatusInternalServerError)
	if wrapped.Error() != "INTERNAL_ERROR: insert failed (caused by: duplicate key)" {
		t.Errorf("unexpected error string: %s", wrapped.Error())
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root")
	err := Internal("boom", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is must reach the wrapped cause")
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", 42)

	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", err.HTTPStatus)
	}
	if err.Details["id"] != int64(42) {
		t.Errorf("expected id 42 in details, got %v", err.Details["id"])
	}
}

func TestAsAppError(t *testing.T) {
	original := Conflict("taken")
	if AsAppError(original) != original {
		t.Error("AsAppError must pass an AppError through unchanged")
	}

	converted := AsAppError(errors.New("plain"))
	if converted.Code != CodeInternal {
		t.Errorf("expected plain errors to convert to %s, got %s", CodeInternal, converted.Code)
	}
}
