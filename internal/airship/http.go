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
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirseerhq/ua-utils/internal/apierror"
)

// Version is reported in the User-Agent header.
var Version = "dev"

const defaultMaxResponseBytes = 10 * 1024 * 1024

// HTTPOptions configures an HTTPClient.
type HTTPOptions struct {
	// BaseURL is the API root that relative endpoints resolve against.
	BaseURL string
	// MaxResponseBytes caps a single response body. Zero means 10MB.
	MaxResponseBytes int64
	// Transport is the underlying round tripper. Nil means a pooled default.
	Transport http.RoundTripper
}

// HTTPClient implements Client with one GET per call and no retry.
type HTTPClient struct {
	http    *http.Client
	baseURL *url.URL
}

// NewHTTPClient creates a client that authenticates every request with creds.
// There is no client-level timeout; cancellation comes from the request context.
func NewHTTPClient(creds Credentials, opts HTTPOptions) (*HTTPClient, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        2,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		}
	}

	limit := opts.MaxResponseBytes
	if limit <= 0 {
		limit = defaultMaxResponseBytes
	}

	return &HTTPClient{
		http: &http.Client{
			Transport: &authTransport{
				creds: creds,
				limit: limit,
				base:  transport,
			},
		},
		baseURL: base,
	}, nil
}

// Resolve turns endpoint into an absolute URL with params merged into its query.
func (c *HTTPClient) Resolve(endpoint string, params url.Values) (*url.URL, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	u := ref
	if !ref.IsAbs() {
		u = c.baseURL.ResolveReference(ref)
	}
	if len(params) > 0 {
		q := u.Query()
		for key, values := range params {
			q.Del(key)
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// Get implements Client.
func (c *HTTPClient) Get(ctx context.Context, endpoint string, params url.Values) (*Page, error) {
	u, err := c.Resolve(endpoint, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apierror.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	page, err := ParsePage(body)
	if err != nil {
		return nil, err
	}
	page.URL = u.String()
	return page, nil
}

// limitedReader wraps a ReadCloser with a size limit to prevent excessive memory usage.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

// Read implements io.Reader with size limit enforcement.
func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
	}

	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)

	return n, err
}

// authTransport adds basic auth and safety limits to HTTP requests
type authTransport struct {
	creds Credentials
	limit int64
	base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	req.SetBasicAuth(t.creds.AppKey, t.creds.Secret)
	req.Header.Set("User-Agent", fmt.Sprintf("ua-utils/%s", Version))

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Body != nil {
		resp.Body = &limitedReader{
			ReadCloser: resp.Body,
			limit:      t.limit,
		}
	}

	return resp, nil
}

// Redact strips userinfo from a URL before it is logged or shown.
func Redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.User == nil {
		return endpoint
	}
	u.User = nil
	return u.String()
}
