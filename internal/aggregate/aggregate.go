package aggregate

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirseerhq/ua-utils/internal/airship"
	"github.com/sirseerhq/ua-utils/internal/pager"
)

// DeviceKind names a cursor-paginated device listing.
type DeviceKind struct {
	// Endpoint is the resource path relative to the API root.
	Endpoint string
	// Key is the member holding the records, also used for the result keys.
	Key string
}

// Device listings served by the API.
var (
	APIDs = DeviceKind{Endpoint: "apids/", Key: "apids"}
	Pins  = DeviceKind{Endpoint: "device_pins/", Key: "device_pins"}
)

const (
	tokensEndpoint = "device_tokens/"
	tokensKey      = "device_tokens"
	usersPath      = "users"
	usersKey       = "users"
	userIDKey      = "user_id"
	tagsEndpoint   = "tags/"
	tagsKey        = "tags"
	activeKey      = "active"
)

func limitParams(pageSize int) url.Values {
	if pageSize <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(pageSize)}}
}

// Tokens fetches every device token page. The reported total and active
// counts come from the first page only.
func Tokens(ctx context.Context, client airship.Client, opts Options) (*TokenResult, error) {
	progress := opts.progress()
	result := &TokenResult{DeviceTokens: []airship.Record{}}
	expected := 0

	first := true
	p := pager.NewCursor(client, tokensEndpoint, limitParams(opts.PageSize))
	for page, err := range p.Pages(ctx) {
		if err != nil {
			return nil, err
		}

		if first {
			first = false
			if result.DeviceTokensCount, err = page.Number("device_tokens_count"); err != nil {
				return nil, err
			}
			if result.ActiveDeviceTokensCount, err = page.Number("active_device_tokens_count"); err != nil {
				return nil, err
			}
			if n, convErr := result.DeviceTokensCount.Int64(); convErr == nil {
				expected = int(n)
			}
		}

		records, err := page.Records(tokensKey)
		if err != nil {
			return nil, err
		}
		result.DeviceTokens = append(result.DeviceTokens, records...)
		progress.Update(len(result.DeviceTokens), expected)
	}

	progress.Done(len(result.DeviceTokens))
	return result, nil
}

// Devices fetches every page of an apid or device pin listing and tallies the
// records whose active member is true.
func Devices(ctx context.Context, client airship.Client, kind DeviceKind, opts Options) (*DeviceResult, error) {
	progress := opts.progress()
	result := &DeviceResult{Key: kind.Key, Devices: []airship.Record{}}

	p := pager.NewCursor(client, kind.Endpoint, limitParams(opts.PageSize))
	for page, err := range p.Pages(ctx) {
		if err != nil {
			return nil, err
		}

		records, err := page.Records(kind.Key)
		if err != nil {
			return nil, err
		}
		result.Devices = append(result.Devices, records...)
		result.Active += CountActive(records)
		progress.Update(len(result.Devices), 0)
	}

	progress.Done(len(result.Devices))
	return result, nil
}

// CountActive returns how many records carry "active": true.
func CountActive(records []airship.Record) int {
	n := 0
	for _, rec := range records {
		if active, ok := rec[activeKey].(bool); ok && active {
			n++
		}
	}
	return n
}

// Users walks the offset-windowed user listing. Records whose user_id was
// already accumulated are filtered out before insertion, and the walk stops
// at the first window that contributes no new user. Records without a
// user_id cannot be deduplicated and are skipped.
func Users(ctx context.Context, client airship.Client, opts Options) (*UserResult, error) {
	increment := opts.UserIncrement
	if increment <= 0 {
		return nil, fmt.Errorf("user increment must be positive, got: %d", increment)
	}

	progress := opts.progress()
	result := &UserResult{Users: []airship.Record{}}
	seen := make(map[string]struct{})

	p := pager.NewOffset(client, usersPath, 0, increment)
	for page, err := range p.Pages(ctx) {
		if err != nil {
			return nil, err
		}

		records, err := page.Records(usersKey)
		if err != nil {
			return nil, err
		}

		added := 0
		for _, rec := range records {
			id, ok := userID(rec)
			if !ok {
				opts.Logger.Warn().Str("page", airship.Redact(page.URL)).Msg("skipping user record without user_id")
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			result.Users = append(result.Users, rec)
			added++
		}

		opts.Logger.Debug().
			Int("fetched", len(records)).
			Int("new", added).
			Msg("user window processed")

		if added == 0 {
			break
		}
		progress.Update(len(result.Users), 0)
	}

	progress.Done(len(result.Users))
	return result, nil
}

// userID returns the dedup identity of a user record.
func userID(rec airship.Record) (string, bool) {
	switch v := rec[userIDKey].(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// Tags fetches the tag listing with a single request.
func Tags(ctx context.Context, client airship.Client, opts Options) (*TagResult, error) {
	progress := opts.progress()

	page, err := client.Get(ctx, tagsEndpoint, nil)
	if err != nil {
		return nil, err
	}

	tags, err := page.Values(tagsKey)
	if err != nil {
		return nil, err
	}

	progress.Done(len(tags))
	return &TagResult{Tags: tags}, nil
}

// For adapts a typed aggregator to Func.
func For[T any](fn func(context.Context, airship.Client, Options) (T, error)) Func {
	return func(ctx context.Context, client airship.Client, opts Options) (any, error) {
		result, err := fn(ctx, client, opts)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

// ForDevices returns the Func aggregating the given device listing.
func ForDevices(kind DeviceKind) Func {
	return func(ctx context.Context, client airship.Client, opts Options) (any, error) {
		result, err := Devices(ctx, client, kind, opts)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}
