package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessageIncludesOpAndCause(t *testing.T) {
	err := Wrap(KindInternal, "list leads", errors.New("connection refused")).WithOp("BatchFetch")

	want := "BatchFetch: list leads: connection refused"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestGetKindFollowsWrappedChain(t *testing.T) {
	inner := Conflict("lead already claimed")
	wrapped := fmt.Errorf("complete qualification: %w", inner)

	if !Is(wrapped, KindConflict) {
		t.Fatalf("expected wrapped error to report KindConflict, got %v", GetKind(wrapped))
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("expected KindUnknown for untyped error")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:    http.StatusNotFound,
		KindConflict:    http.StatusConflict,
		KindInternal:    http.StatusInternalServerError,
		KindUnavailable: http.StatusServiceUnavailable,
		KindTimeout:     http.StatusGatewayTimeout,
		KindValidation:  http.StatusBadRequest,
	}
	for kind, want := range cases {
		if got := New(kind, "x").HTTPStatus(); got != want {
			t.Errorf("kind %d: HTTPStatus() = %d, want %d", kind, got, want)
		}
	}
}

func TestErrorWithoutOpOrMessage(t *testing.T) {
	err := Wrap(KindTimeout, "", errors.New("deadline exceeded"))
	if err.Error() != "deadline exceeded" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if KindTimeout.String() != "timeout" || Kind(99).String() != "unknown" {
		t.Fatal("unexpected kind names")
	}
}
