package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewForbidden("nope")
	mapped := ToDomainError(original)
	if mapped.Code != "FORBIDDEN" || mapped.HTTPStatus != http.StatusForbidden {
		t.Errorf("mapped = %+v", mapped)
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	mapped := ToDomainError(errors.New("connection refused"))
	if mapped.Code != "INTERNAL_ERROR" || mapped.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("mapped = %+v", mapped)
	}
	if mapped.Message != "internal server error" {
		t.Errorf("internal detail leaked: %q", mapped.Message)
	}
}

func TestToDomainErrorNoRows(t *testing.T) {
	mapped := ToDomainError(pgx.ErrNoRows)
	if mapped.Code != "NOT_FOUND" || mapped.HTTPStatus != http.StatusNotFound {
		t.Errorf("mapped = %+v", mapped)
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Error("nil must map to nil")
	}
}

func TestInvalidTransitionDetails(t *testing.T) {
	err := NewInvalidTransition("PENDING", "RESOLVED")
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T", err)
	}
	if domainErr.Code != "INVALID_TRANSITION" || domainErr.HTTPStatus != http.StatusConflict {
		t.Errorf("err = %+v", domainErr)
	}
	if domainErr.Details["from"] != "PENDING" || domainErr.Details["to"] != "RESOLVED" {
		t.Errorf("details = %v", domainErr.Details)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := NewInternalError(inner)
	if !errors.Is(err, inner) {
		t.Error("wrapped cause must be reachable via errors.Is")
	}
}
