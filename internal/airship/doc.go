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

// Package airship provides the HTTP request layer for the vendor push
// notification REST API. It performs single authenticated GET requests that
// decode into a Page, and wraps them with bounded retry.
//
// The package includes:
//   - A Client interface implemented by HTTPClient and RetryClient
//   - HTTP basic authentication applied to every request, including
//     absolute continuation URLs returned by a previous page
//   - Page and Record types that keep JSON values verbatim
//   - Mock client for testing
//
// Basic usage:
//
//	creds := airship.Credentials{AppKey: key, Secret: secret}
//	base, err := airship.NewHTTPClient(creds, airship.HTTPOptions{BaseURL: "https://go.urbanairship.com/api/"})
//	if err != nil {
//	    // Handle error
//	}
//	client := airship.NewRetryClient(base, nil, logger)
//	page, err := client.Get(ctx, "device_tokens/", url.Values{"limit": {"1000"}})
package airship
