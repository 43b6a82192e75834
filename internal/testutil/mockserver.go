// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testutil provides an httptest stand-in for the Urban Airship API
// and helpers shared by package tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// Request is one request seen by a MockServer.
type Request struct {
	Path     string
	RawQuery string
	AppKey   string
	Secret   string
	HasAuth  bool
}

// MockServer provides common mock server configurations for testing
type MockServer struct {
	*httptest.Server

	requestCount atomic.Int32
	mu           sync.Mutex
	requests     []Request
	routes       map[string]any
}

// NewMockServer creates a mock server that records every request before
// passing it to handler. The server is closed when the test ends.
func NewMockServer(t *testing.T, handler http.HandlerFunc) *MockServer {
	t.Helper()
	m := &MockServer{routes: make(map[string]any)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.record(r)
		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

// NewAPIServer creates a mock server answering registered routes with JSON.
// Unregistered paths get 404.
func NewAPIServer(t *testing.T) *MockServer {
	t.Helper()
	var m *MockServer
	m = NewMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, ok := m.route(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		WriteJSON(w, body)
	})
	return m
}

// NewErrorServer creates a mock server that always returns the specified error
func NewErrorServer(t *testing.T, statusCode int) *MockServer {
	t.Helper()
	return NewMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	})
}

// NewTransientErrorServer creates a mock server that fails failCount times
// with errorCode and then answers every request with body.
func NewTransientErrorServer(t *testing.T, failCount, errorCode int, body any) *MockServer {
	t.Helper()
	var m *MockServer
	m = NewMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if m.RequestCount() <= failCount {
			w.WriteHeader(errorCode)
			_, _ = w.Write([]byte(http.StatusText(errorCode)))
			return
		}
		WriteJSON(w, body)
	})
	return m
}

// Handle registers body for path. A path containing "?" only matches that
// exact query; otherwise any query matches.
func (m *MockServer) Handle(path string, body any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes["/"+strings.TrimPrefix(path, "/")] = body
}

// URLFor returns the absolute URL of path on this server.
func (m *MockServer) URLFor(path string) string {
	return m.URL + "/" + strings.TrimPrefix(path, "/")
}

// BaseURL returns the API root to configure clients with.
func (m *MockServer) BaseURL() string {
	return m.URL + "/"
}

// RequestCount returns how many requests the server has received.
func (m *MockServer) RequestCount() int {
	return int(m.requestCount.Load())
}

// Requests returns a copy of the recorded requests in arrival order.
func (m *MockServer) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

func (m *MockServer) record(r *http.Request) {
	req := Request{Path: r.URL.Path, RawQuery: r.URL.RawQuery}
	req.AppKey, req.Secret, req.HasAuth = r.BasicAuth()

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	m.requestCount.Add(1)
}

func (m *MockServer) route(r *http.Request) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.URL.RawQuery != "" {
		if body, ok := m.routes[r.URL.Path+"?"+r.URL.RawQuery]; ok {
			return body, true
		}
	}
	body, ok := m.routes[r.URL.Path]
	return body, ok
}

// WriteJSON answers with body encoded as JSON. A string or []byte body is
// written verbatim.
func WriteJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	switch b := body.(type) {
	case string:
		_, _ = w.Write([]byte(b))
	case []byte:
		_, _ = w.Write(b)
	default:
		_ = json.NewEncoder(w).Encode(body)
	}
}
