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
	"bytes"
	"encoding/json"
	"fmt"

	uaerrors "github.com/sirseerhq/ua-utils/internal/errors"
)

// Credentials is the app key/secret pair sent as HTTP basic auth.
// It never prints the secret.
type Credentials struct {
	AppKey string
	Secret string
}

// String implements fmt.Stringer without exposing the secret.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{AppKey: %q, Secret: <redacted>}", c.AppKey)
}

// GoString implements fmt.GoStringer so %#v does not leak the secret.
func (c Credentials) GoString() string {
	return c.String()
}

// Record is one token, apid, pin, user or tag object as returned by the API.
// Numbers are kept as json.Number so they serialize back unchanged.
type Record map[string]any

// Page is one decoded API response: a JSON object whose members are kept raw
// until an aggregator asks for them.
type Page struct {
	// URL is the fully resolved URL the page was fetched from.
	URL    string
	fields map[string]json.RawMessage
}

// NextPageKey is the member carrying the absolute continuation URL.
const NextPageKey = "next_page"

// ParsePage decodes a response body into a Page. The body must be a JSON object.
func ParsePage(data []byte) (*Page, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", uaerrors.ErrInvalidResponse, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: response body is null", uaerrors.ErrInvalidResponse)
	}
	return &Page{fields: fields}, nil
}

// NextPage returns the continuation URL, or "" when the page is the last one.
func (p *Page) NextPage() string {
	raw, ok := p.fields[NextPageKey]
	if !ok {
		return ""
	}
	var next string
	if err := json.Unmarshal(raw, &next); err != nil {
		return ""
	}
	return next
}

// Has reports whether the page carries the member key.
func (p *Page) Has(key string) bool {
	_, ok := p.fields[key]
	return ok
}

// Records decodes the array member key into records. A missing or null member
// yields an empty slice.
func (p *Page) Records(key string) ([]Record, error) {
	var records []Record
	if err := p.decode(key, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Values decodes the array member key into plain JSON values.
func (p *Page) Values(key string) ([]any, error) {
	var values []any
	if err := p.decode(key, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = []any{}
	}
	return values, nil
}

// Number returns the numeric member key verbatim. A missing or null member
// yields "".
func (p *Page) Number(key string) (json.Number, error) {
	var n *json.Number
	if err := p.decode(key, &n); err != nil {
		return "", err
	}
	if n == nil {
		return "", nil
	}
	return *n, nil
}

func (p *Page) decode(key string, v any) error {
	raw, ok := p.fields[key]
	if !ok {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: member %q: %v", uaerrors.ErrInvalidResponse, key, err)
	}
	return nil
}
