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

package airship

import (
	"context"
	"fmt"
	"net/url"
)

// MockCall records one Get made against a MockClient.
type MockCall struct {
	Endpoint string
	Params   url.Values
}

// MockClient is a mock implementation of the Client interface for testing.
type MockClient struct {
	// Pages to return, keyed by the endpoint string passed to Get
	Pages map[string]*Page

	// Errors are returned in order, one per call, before any page is served
	Errors []error

	// Track calls for verification
	Calls []MockCall
}

// NewMockClient creates a new mock client serving pages by endpoint
func NewMockClient(pages map[string]*Page) *MockClient {
	if pages == nil {
		pages = make(map[string]*Page)
	}
	return &MockClient{Pages: pages}
}

// Get implements the Client interface
func (m *MockClient) Get(ctx context.Context, endpoint string, params url.Values) (*Page, error) {
	m.Calls = append(m.Calls, MockCall{Endpoint: endpoint, Params: params})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(m.Errors) > 0 {
		err := m.Errors[0]
		m.Errors = m.Errors[1:]
		return nil, err
	}

	page, ok := m.Pages[endpoint]
	if !ok {
		return nil, fmt.Errorf("mock: no page for endpoint %q", endpoint)
	}
	return page, nil
}

// CallCount returns the number of Get calls made so far.
func (m *MockClient) CallCount() int {
	return len(m.Calls)
}

// MustParsePage parses a JSON body into a Page and panics on error.
// Intended for tests.
func MustParsePage(body string) *Page {
	page, err := ParsePage([]byte(body))
	if err != nil {
		panic(err)
	}
	return page
}
