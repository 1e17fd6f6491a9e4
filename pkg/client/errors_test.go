package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestUpstreamError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UpstreamError
		want string
	}{
		{
			name: "with underlying error",
			err: &UpstreamError{
				Class:   ErrorClassNetwork,
				Message: "request failed",
				Err:     errors.New("connection refused"),
			},
			want: "upstream network error (status 0): request failed: connection refused",
		},
		{
			name: "status only",
			err: &UpstreamError{
				StatusCode: 404,
				Class:      ErrorClassClient,
				Message:    "404 Not Found",
			},
			want: "upstream client error (status 404): 404 Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUpstreamError_Unwrap(t *testing.T) {
	base := errors.New("boom")
	err := &UpstreamError{Class: ErrorClassNetwork, Err: base}
	if !errors.Is(err, base) {
		t.Error("errors.Is() should find the underlying error")
	}
}

func TestAsUpstreamAndStatusCode(t *testing.T) {
	ue := &UpstreamError{StatusCode: 503, Class: ErrorClassServer}
	wrapped := fmt.Errorf("fetch prizes: %w", ue)

	got, ok := AsUpstream(wrapped)
	if !ok || got != ue {
		t.Fatalf("AsUpstream() = %v, %v", got, ok)
	}
	if code := StatusCode(wrapped); code != 503 {
		t.Errorf("StatusCode() = %d, want 503", code)
	}
	if code := StatusCode(errors.New("plain")); code != 0 {
		t.Errorf("StatusCode(plain) = %d, want 0", code)
	}
	if _, ok := AsUpstream(nil); ok {
		t.Error("AsUpstream(nil) should be false")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{http.StatusBadRequest, ErrorClassClient},
		{http.StatusNotFound, ErrorClassClient},
		{http.StatusTooManyRequests, ErrorClassClient},
		{http.StatusInternalServerError, ErrorClassServer},
		{http.StatusServiceUnavailable, ErrorClassServer},
		{http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			if got := classifyStatus(tt.status); got != tt.want {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}
