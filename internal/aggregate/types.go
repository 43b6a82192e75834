package aggregate

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sirseerhq/ua-utils/internal/airship"
)

// Progress receives a record count after every page.
type Progress interface {
	// Update reports the records accumulated so far. expected is the total the
	// API announced, or 0 when unknown.
	Update(records, expected int)
	// Done reports the final record count.
	Done(records int)
}

type nopProgress struct{}

func (nopProgress) Update(int, int) {}
func (nopProgress) Done(int)        {}

// Options carries per-invocation settings shared by all aggregators.
type Options struct {
	// PageSize is sent as the limit parameter on cursor-paginated listings.
	PageSize int
	// UserIncrement is the window size of the offset-paginated user listing.
	UserIncrement int
	Progress      Progress
	Logger        zerolog.Logger
}

func (o Options) progress() Progress {
	if o.Progress == nil {
		return nopProgress{}
	}
	return o.Progress
}

// Func is the common shape of every aggregator: walk the listing with client
// and return a JSON-serializable result.
type Func func(ctx context.Context, client airship.Client, opts Options) (any, error)

// TokenResult is the aggregated device token listing. The two counters are
// copied from the first page and never recomputed.
type TokenResult struct {
	DeviceTokensCount       json.Number      `json:"device_tokens_count"`
	ActiveDeviceTokensCount json.Number      `json:"active_device_tokens_count"`
	DeviceTokens            []airship.Record `json:"device_tokens"`
}

// DeviceResult is an aggregated apid or device pin listing with a locally
// computed active tally. It serializes as {"<key>": [...], "active_<key>": n}.
type DeviceResult struct {
	Key     string
	Devices []airship.Record
	Active  int
}

// MarshalJSON writes the records member before the tally.
func (r DeviceResult) MarshalJSON() ([]byte, error) {
	devices, err := json.Marshal(r.Devices)
	if err != nil {
		return nil, err
	}
	key, err := json.Marshal(r.Key)
	if err != nil {
		return nil, err
	}
	activeKey, err := json.Marshal("active_" + r.Key)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(devices)
	buf.WriteByte(',')
	buf.Write(activeKey)
	buf.WriteByte(':')
	buf.WriteString(strconv.Itoa(r.Active))
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UserResult is the deduplicated user listing.
type UserResult struct {
	Users []airship.Record `json:"users"`
}

// TagResult is the raw tag listing.
type TagResult struct {
	Tags []any `json:"tags"`
}
