// Package testutil provides testing utilities for the Nobel prize cache.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines a canned response for a mock endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockUpstream is a configurable fake of the Nobel Prize API.
//
// By default /nobelPrizes serves the configured fixture prizes, honouring
// nobelPrizeYear, nobelPrizeCategory, offset and limit the way the real API
// does, and /laureates returns a small static payload.
type MockUpstream struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	prizes   []map[string]any

	// Tracking
	requestCount int
	pathCounts   map[string]int
	lastQuery    string
}

// NewMockUpstream starts a fake upstream serving the given prize fixtures.
func NewMockUpstream(prizes ...map[string]any) *MockUpstream {
	mock := &MockUpstream{
		handlers:   make(map[string]http.HandlerFunc),
		pathCounts: make(map[string]int),
		prizes:     prizes,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := "/" + strings.Trim(r.URL.Path, "/")

		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[path]++
		mock.lastQuery = r.URL.RawQuery
		handler, exists := mock.handlers[path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		switch path {
		case "/nobelPrizes":
			mock.prizesHandler(w, r)
		case "/laureates":
			mock.laureatesHandler(w, r)
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		}
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockUpstream) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.pathCounts = make(map[string]int)
	m.lastQuery = ""
}

// SetHandler overrides the handler for a path such as "/nobelPrizes".
func (m *MockUpstream) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a canned response for a path.
func (m *MockUpstream) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			_, _ = w.Write([]byte(resp.Body))
		}
	})
}

// ClearHandler restores the default behaviour for path.
func (m *MockUpstream) ClearHandler(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, path)
}

// RequestCount returns the number of requests made to the server.
func (m *MockUpstream) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PathCount returns the number of requests made to path.
func (m *MockUpstream) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// LastQuery returns the raw query string of the most recent request.
func (m *MockUpstream) LastQuery() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

func (m *MockUpstream) prizesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	matched := make([]map[string]any, 0, len(m.prizes))
	for _, p := range m.prizes {
		if year := q.Get("nobelPrizeYear"); year != "" && fmt.Sprint(p["awardYear"]) != year {
			continue
		}
		if cat := q.Get("nobelPrizeCategory"); cat != "" && !categoryMatches(p, cat) {
			continue
		}
		matched = append(matched, p)
	}

	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 25
	}

	page := []map[string]any{}
	if offset < len(matched) {
		end := min(offset+limit, len(matched))
		page = matched[offset:end]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"nobelPrizes": page,
		"meta": map[string]any{
			"offset": offset,
			"limit":  limit,
			"count":  len(matched),
		},
	})
}

func (m *MockUpstream) laureatesHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"laureates": []map[string]any{
			{"id": "1", "knownName": map[string]string{"en": "Wilhelm Conrad Röntgen"}},
		},
		"meta": map[string]any{"offset": 0, "limit": 25, "count": 1},
	})
}

// categoryMatches compares the filter with the English label, using the
// short codes the upstream accepts (phy, che, med, lit, pea, eco).
func categoryMatches(p map[string]any, filter string) bool {
	labels, _ := p["category"].(map[string]string)
	en := strings.ToLower(labels["en"])
	filter = strings.ToLower(filter)
	if en == filter {
		return true
	}
	return len(filter) == 3 && strings.HasPrefix(en, filter)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewPrize builds a fixture prize in the upstream wire shape. Laureates are
// given as English known names.
func NewPrize(year int, category string, amount int, laureates ...string) map[string]any {
	ls := make([]map[string]any, 0, len(laureates))
	for i, name := range laureates {
		ls = append(ls, map[string]any{
			"id":         strconv.Itoa(year*10 + i),
			"knownName":  map[string]string{"en": name},
			"motivation": map[string]string{"en": "for services to " + strings.ToLower(category)},
			"portion":    fmt.Sprintf("1/%d", len(laureates)),
		})
	}
	return map[string]any{
		"awardYear":   strconv.Itoa(year),
		"category":    map[string]string{"en": category},
		"dateAwarded": fmt.Sprintf("%d-10-01", year),
		"prizeAmount": amount,
		"laureates":   ls,
	}
}

// NewServerErrorResponse creates a 500 response with a JSON body.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewNotFoundResponse creates a 404 response with a plain text body.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       "no such resource",
		Headers:    map[string]string{"Content-Type": "text/plain"},
	}
}
