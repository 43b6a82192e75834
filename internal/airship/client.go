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
	"net/url"
)

// Client defines the interface for issuing requests against the vendor API.
// This interface allows for easy mocking in tests.
type Client interface {
	// Get performs one GET against endpoint and decodes the JSON object body.
	// endpoint is either a path relative to the API root (e.g. "apids/") or an
	// absolute continuation URL returned in a previous page. params are merged
	// into the query string and may be nil.
	Get(ctx context.Context, endpoint string, params url.Values) (*Page, error)
}
