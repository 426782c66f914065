package errors

import (
	stderr "errors"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	t.Parallel()

	if got := CodeOf(nil); got != ErrorCodeUnknown {
		t.Fatalf("CodeOf(nil) = %v", got)
	}
	if got := CodeOf(stderr.New("plain")); got != ErrorCodeUnknown {
		t.Fatalf("CodeOf(plain) = %v", got)
	}
	if got := CodeOf(NotFoundf("missing %s", "thing")); got != ErrorCodeNotFound {
		t.Fatalf("CodeOf(NotFoundf) = %v", got)
	}

	wrapped := Wrapf(stderr.New("boom"), ErrorCodeUnavailable, "upstream failed")
	if !IsCode(wrapped, ErrorCodeUnavailable) {
		t.Fatalf("IsCode(wrapped) false, CodeOf = %v", CodeOf(wrapped))
	}
}

func TestRootUnwrapsToOriginal(t *testing.T) {
	t.Parallel()

	orig := stderr.New("boom")
	err := Wrap(Wrap(orig, ErrorCodeDB, "query failed"), ErrorCodeUnavailable, "request failed")
	if got := Root(err); got != orig {
		t.Fatalf("Root = %v, want the original", got)
	}
}

func TestWithField(t *testing.T) {
	t.Parallel()

	err := WithField(Newf(ErrorCodeValidation, "bad input"), "email")
	e, ok := As(err)
	if !ok {
		t.Fatal("As failed")
	}
	if e.Field() != "email" {
		t.Fatalf("field = %q", e.Field())
	}
	if e.ToWire().Field != "email" {
		t.Fatalf("wire field = %q", e.ToWire().Field)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatusCode(tc.code); got != tc.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", tc.code, got, tc.want)
		}
	}

	status, wire := HTTP(NotFoundf("nope"))
	if status != http.StatusNotFound || wire.Code != ErrorCodeNotFound {
		t.Fatalf("HTTP = %d %+v", status, wire)
	}
}

func TestWrapIf(t *testing.T) {
	t.Parallel()

	if WrapIf(nil, ErrorCodeDB, "x") != nil {
		t.Fatal("WrapIf(nil) should stay nil")
	}
	if !IsCode(WrapIf(stderr.New("boom"), ErrorCodeDB, "x"), ErrorCodeDB) {
		t.Fatal("WrapIf should tag the error")
	}
}
