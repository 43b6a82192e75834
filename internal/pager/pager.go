// Package pager walks paginated vendor API listings one request at a time.
//
// Two strategies are supported:
//   - Cursor: the first request uses a resource path and starting parameters;
//     each following request fetches the absolute next_page URL of the
//     previous page. The sequence ends at the first page without next_page.
//   - Offset: requests "<path>/<offset>/<increment>" windows, advancing the
//     offset by increment each time. The endpoint gives no end marker, so the
//     sequence never ends by itself; the consumer stops ranging once a page
//     adds nothing new.
//
// A Pager holds no accumulated records and can be ranged over only once.
package pager

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strings"

	"github.com/sirseerhq/ua-utils/internal/airship"
)

// ErrConsumed is yielded when a Pager is ranged over a second time.
var ErrConsumed = errors.New("pager already consumed")

// request is the endpoint and parameters for one page fetch.
type request struct {
	endpoint string
	params   url.Values
}

// advanceFunc computes the request following prev, the page at index.
// ok is false when the sequence is exhausted.
type advanceFunc func(prev *airship.Page, index int) (next request, ok bool)

// Pager produces a lazy, finite-or-consumer-bounded sequence of pages.
type Pager struct {
	client  airship.Client
	first   request
	advance advanceFunc
	used    bool
}

// NewCursor returns a pager that follows next_page continuation URLs.
func NewCursor(client airship.Client, endpoint string, params url.Values) *Pager {
	return &Pager{
		client: client,
		first:  request{endpoint: endpoint, params: params},
		advance: func(prev *airship.Page, _ int) (request, bool) {
			next := prev.NextPage()
			if next == "" {
				return request{}, false
			}
			return request{endpoint: next}, true
		},
	}
}

// NewOffset returns a pager over "<path>/<offset>/<increment>" windows
// starting at offset start.
func NewOffset(client airship.Client, path string, start, increment int) *Pager {
	path = strings.TrimSuffix(path, "/")
	window := func(index int) request {
		return request{endpoint: fmt.Sprintf("%s/%d/%d", path, start+index*increment, increment)}
	}
	return &Pager{
		client: client,
		first:  window(0),
		advance: func(_ *airship.Page, index int) (request, bool) {
			return window(index + 1), true
		},
	}
}

// Pages returns the page sequence. Each page is fetched only when the
// consumer asks for it; breaking out of the range stops all fetching. A
// failed fetch yields its error and ends the sequence.
func (p *Pager) Pages(ctx context.Context) iter.Seq2[*airship.Page, error] {
	return func(yield func(*airship.Page, error) bool) {
		if p.used {
			yield(nil, ErrConsumed)
			return
		}
		p.used = true

		req := p.first
		for index := 0; ; index++ {
			page, err := p.client.Get(ctx, req.endpoint, req.params)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(page, nil) {
				return
			}

			next, ok := p.advance(page, index)
			if !ok {
				return
			}
			req = next
		}
	}
}
