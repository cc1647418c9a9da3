package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cultureshare-api-io/api/internal/common"

	"github.com/stretchr/testify/assert"
)

func TestReachableStatus(t *testing.T) {
	tests := []struct {
		code     int
		expected bool
	}{
		{code: http.StatusOK, expected: true},
		{code: http.StatusNoContent, expected: true},
		{code: http.StatusMovedPermanently, expected: true},
		{code: http.StatusNotModified, expected: true},
		{code: http.StatusBadRequest, expected: false},
		{code: http.StatusNotFound, expected: false},
		{code: http.StatusGone, expected: false},
		{code: http.StatusInternalServerError, expected: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ReachableStatus(tt.code), "status %d", tt.code)
	}
}

func TestTerminationReason(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	reason := TerminationReason(at, "link returned status code 404")

	assert.Equal(t, "link unreachable as of 2024-03-15T10:30:00Z: link returned status code 404", reason)
}

func TestProbeReachableLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := &linkCheckService{client: server.Client()}

	ok, cause := s.probe(context.Background(), server.URL)
	assert.True(t, ok)
	assert.Empty(t, cause)
}

func TestProbeRetriesWithGetWhenHeadRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := &linkCheckService{client: server.Client()}

	ok, cause := s.probe(context.Background(), server.URL)
	assert.True(t, ok)
	assert.Empty(t, cause)
}

func TestProbeDeadLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := &linkCheckService{client: server.Client()}

	ok, cause := s.probe(context.Background(), server.URL)
	assert.False(t, ok)
	assert.Contains(t, cause, "404")
}

func TestProbeConnectionRefused(t *testing.T) {
	// Grab a port nothing listens on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := server.URL
	server.Close()

	s := &linkCheckService{client: &http.Client{Timeout: common.LINK_CHECK_TIMEOUT}}

	ok, cause := s.probe(context.Background(), deadURL)
	assert.False(t, ok)
	assert.Contains(t, cause, "request failed")
}

func TestProbeMalformedLink(t *testing.T) {
	s := &linkCheckService{client: &http.Client{Timeout: common.LINK_CHECK_TIMEOUT}}

	ok, cause := s.probe(context.Background(), "://not-a-url")
	assert.False(t, ok)
	assert.Contains(t, cause, "invalid link")
}
