package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storeline-tech/go-backend/pkg/e"
)

func TestToHTTPResponse(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{e.ErrUnauthorized, http.StatusForbidden},
		{e.ErrOwnerRequired, http.StatusBadRequest},
		{e.ErrProductNotFound, http.StatusNotFound},
		{e.ErrEmptyQuery, http.StatusBadRequest},
		{e.ErrMissingImage, http.StatusBadRequest},
		{e.ErrAmbiguousImage, http.StatusBadRequest},
		{e.ErrStatusBadRequest, http.StatusBadRequest},
		{e.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{e.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{e.ErrEmbedderNotConfigured, http.StatusServiceUnavailable},
		{e.ErrImageModelNotConfigured, http.StatusServiceUnavailable},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		code, msg := ToHTTPResponse(tc.err)
		if code != tc.code {
			t.Errorf("ToHTTPResponse(%v) code = %d, want %d", tc.err, code, tc.code)
		}
		if msg == "" {
			t.Errorf("ToHTTPResponse(%v) returned empty message", tc.err)
		}
	}
}

func TestToHTTPResponseWrappedError(t *testing.T) {
	wrapped := e.Wrap("SearchUC.SearchByText", e.ErrEmptyQuery)

	code, _ := ToHTTPResponse(wrapped)
	if code != http.StatusBadRequest {
		t.Fatalf("wrapped sentinel mapped to %d, want 400", code)
	}
}

func TestToHTTPResponseHidesInternals(t *testing.T) {
	_, msg := ToHTTPResponse(errors.New("pq: connection refused on 10.0.0.5"))
	if msg != e.ErrInternalServerError.Error() {
		t.Fatalf("internal error leaked to client: %q", msg)
	}
}

func TestCallerID(t *testing.T) {
	cases := []struct {
		header  string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-1", 0, true},
		{"0", 0, true},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if tc.header != "" {
			req.Header.Set("X-Account-ID", tc.header)
		}

		got, err := callerID(req)
		if tc.wantErr {
			if err == nil {
				t.Errorf("callerID(%q): want error", tc.header)
			}
			continue
		}
		if err != nil {
			t.Errorf("callerID(%q): %v", tc.header, err)
			continue
		}
		if got != tc.want {
			t.Errorf("callerID(%q) = %d, want %d", tc.header, got, tc.want)
		}
	}
}
