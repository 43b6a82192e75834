package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/ua-utils/internal/airship"
	uaerrors "github.com/sirseerhq/ua-utils/internal/errors"
)

type recordingProgress struct {
	updates  []int
	expected []int
	done     int
	doneHit  bool
}

func (r *recordingProgress) Update(records, expected int) {
	r.updates = append(r.updates, records)
	r.expected = append(r.expected, expected)
}

func (r *recordingProgress) Done(records int) {
	r.done = records
	r.doneHit = true
}

func page(t *testing.T, v any) *airship.Page {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	p, err := airship.ParsePage(data)
	require.NoError(t, err)
	return p
}

func device(id string, active bool) map[string]any {
	return map[string]any{"apid": id, "active": active}
}

func TestDevices_TwoPageAPIDs(t *testing.T) {
	next := "https://go.example.test/api/apids/?start=a3&limit=3"
	mock := airship.NewMockClient(map[string]*airship.Page{
		"apids/": page(t, map[string]any{
			"apids":     []any{device("a1", true), device("a2", false), device("a3", true)},
			"next_page": next,
		}),
		next: page(t, map[string]any{
			"apids": []any{device("a4", false), device("a5", true)},
		}),
	})
	progress := &recordingProgress{}

	result, err := Devices(context.Background(), mock, APIDs, Options{PageSize: 3, Progress: progress})
	require.NoError(t, err)

	assert.Len(t, result.Devices, 5)
	assert.Equal(t, 3, result.Active)
	assert.Equal(t, "3", mock.Calls[0].Params.Get("limit"))
	assert.Equal(t, []int{3, 5}, progress.updates)
	assert.Equal(t, 5, progress.done)

	out, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Len(t, decoded, 2)
	assert.JSONEq(t, "3", string(decoded["active_apids"]))

	var apids []map[string]any
	require.NoError(t, json.Unmarshal(decoded["apids"], &apids))
	require.Len(t, apids, 5)
	for i, rec := range apids {
		assert.Equal(t, fmt.Sprintf("a%d", i+1), rec["apid"], "records keep page order")
	}
	assert.True(t, strings.HasPrefix(string(out), `{"apids":`), "records precede the tally")
}

func TestDevices_Pins(t *testing.T) {
	mock := airship.NewMockClient(map[string]*airship.Page{
		"device_pins/": page(t, map[string]any{
			"device_pins": []any{
				map[string]any{"device_pin": "12345678", "active": true},
				map[string]any{"device_pin": "87654321", "active": "true"},
				map[string]any{"device_pin": "abcdef01"},
			},
		}),
	})

	result, err := Devices(context.Background(), mock, Pins, Options{})
	require.NoError(t, err)
	assert.Len(t, result.Devices, 3)
	assert.Equal(t, 1, result.Active, "only a boolean true counts as active")
	assert.Nil(t, mock.Calls[0].Params, "no limit when page size is unset")

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"active_device_pins":1`)
}

func TestDevices_TallyIsRecomputedFromRecords(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 25; trial++ {
		pageCount := 1 + rng.Intn(6)
		pages := make(map[string]*airship.Page)
		wantRecords, wantActive := 0, 0

		for i := 0; i < pageCount; i++ {
			var records []any
			for j := rng.Intn(8); j > 0; j-- {
				active := rng.Intn(2) == 0
				if active {
					wantActive++
				}
				records = append(records, device(fmt.Sprintf("p%d-%d", i, j), active))
				wantRecords++
			}
			body := map[string]any{
				"apids": records,
				// A misleading reported count that must be ignored.
				"active_apids": 9999,
			}
			if i < pageCount-1 {
				body["next_page"] = fmt.Sprintf("https://x.test/apids/%d", i+1)
			}
			endpoint := "apids/"
			if i > 0 {
				endpoint = fmt.Sprintf("https://x.test/apids/%d", i)
			}
			pages[endpoint] = page(t, body)
		}

		mock := airship.NewMockClient(pages)
		result, err := Devices(context.Background(), mock, APIDs, Options{})
		require.NoError(t, err)

		assert.Equal(t, pageCount, mock.CallCount(), "trial %d", trial)
		assert.Len(t, result.Devices, wantRecords, "trial %d", trial)
		assert.Equal(t, wantActive, result.Active, "trial %d", trial)
		assert.Equal(t, CountActive(result.Devices), result.Active, "trial %d", trial)
	}
}

func TestDevices_ErrorYieldsNoResult(t *testing.T) {
	exhausted := &airship.ExhaustedError{Endpoint: "https://x.test/2", Attempts: 11, Err: errors.New("boom")}
	mock := airship.NewMockClient(map[string]*airship.Page{
		"apids/": page(t, map[string]any{"apids": []any{device("a1", true)}, "next_page": "https://x.test/2"}),
	})
	client := &failAfter{Client: mock, n: 1, err: exhausted}

	result, err := Devices(context.Background(), client, APIDs, Options{})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, uaerrors.ErrRetriesExhausted)
}

func TestDevices_MalformedRecords(t *testing.T) {
	mock := airship.NewMockClient(map[string]*airship.Page{
		"apids/": airship.MustParsePage(`{"apids": {"not": "an array"}}`),
	})

	_, err := Devices(context.Background(), mock, APIDs, Options{})
	assert.ErrorIs(t, err, uaerrors.ErrInvalidResponse)
}

// failAfter passes the first n calls through and fails the rest.
type failAfter struct {
	airship.Client
	n     int
	calls int
	err   error
}

func (f *failAfter) Get(ctx context.Context, endpoint string, params url.Values) (*airship.Page, error) {
	f.calls++
	if f.calls > f.n {
		return nil, f.err
	}
	return f.Client.Get(ctx, endpoint, params)
}

func TestTokens_CountersFromFirstPage(t *testing.T) {
	mock := airship.NewMockClient(map[string]*airship.Page{
		"device_tokens/": airship.MustParsePage(`{
			"device_tokens_count": 5,
			"active_device_tokens_count": 4,
			"device_tokens": [{"device_token": "T1", "active": true}, {"device_token": "T2", "active": false}],
			"next_page": "https://x.test/device_tokens/?start=T2"
		}`),
		"https://x.test/device_tokens/?start=T2": airship.MustParsePage(`{
			"device_tokens_count": 500,
			"active_device_tokens_count": 1,
			"device_tokens": [{"device_token": "T3", "active": false}],
			"next_page": "https://x.test/device_tokens/?start=T3"
		}`),
		"https://x.test/device_tokens/?start=T3": airship.MustParsePage(`{
			"device_tokens": [{"device_token": "T4", "active": false}, {"device_token": "T5", "active": false}]
		}`),
	})
	progress := &recordingProgress{}

	result, err := Tokens(context.Background(), mock, Options{PageSize: 2, Progress: progress})
	require.NoError(t, err)

	assert.Equal(t, json.Number("5"), result.DeviceTokensCount)
	assert.Equal(t, json.Number("4"), result.ActiveDeviceTokensCount, "reported, not recomputed")
	assert.Len(t, result.DeviceTokens, 5)
	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, []int{2, 3, 5}, progress.updates)
	assert.Equal(t, []int{5, 5, 5}, progress.expected)

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), `{"device_tokens_count":5,"active_device_tokens_count":4,"device_tokens":[`))
}

func TestTokens_MissingCounters(t *testing.T) {
	mock := airship.NewMockClient(map[string]*airship.Page{
		"device_tokens/": airship.MustParsePage(`{"device_tokens": []}`),
	})

	result, err := Tokens(context.Background(), mock, Options{})
	require.NoError(t, err)
	assert.Empty(t, result.DeviceTokens)

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"device_tokens_count": 0, "active_device_tokens_count": 0, "device_tokens": []}`, string(out))
}

func users(ids ...string) map[string]any {
	records := make([]any, 0, len(ids))
	for _, id := range ids {
		records = append(records, map[string]any{"user_id": id, "tags": []any{}})
	}
	return map[string]any{"users": records}
}

func TestUsers_StopsWhenWindowRepeats(t *testing.T) {
	mock := airship.NewMockClient(map[string]*airship.Page{
		"users/0/10":  page(t, users("u1", "u2", "u3")),
		"users/10/10": page(t, users("u1", "u2", "u3")),
	})

	result, err := Users(context.Background(), mock, Options{UserIncrement: 10, Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Len(t, result.Users, 3)
	assert.Equal(t, 2, mock.CallCount())
	assert.Equal(t, "users/0/10", mock.Calls[0].Endpoint)
	assert.Equal(t, "users/10/10", mock.Calls[1].Endpoint)
}

func TestUsers_RepeatAtEndProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		increment := 1 + rng.Intn(5)
		windows := 1 + rng.Intn(5)
		pages := make(map[string]*airship.Page)

		var last map[string]any
		next := 0
		for w := 0; w < windows; w++ {
			var ids []string
			// Windows overlap with the previous one by up to two ids.
			start := next - rng.Intn(3)
			if start < 0 {
				start = 0
			}
			for i := 0; i < increment; i++ {
				ids = append(ids, fmt.Sprintf("user-%d", start+i))
			}
			next = start + increment
			last = users(ids...)
			pages[fmt.Sprintf("users/%d/%d", w*increment, increment)] = page(t, last)
		}
		// The API repeats the final window past the true end.
		pages[fmt.Sprintf("users/%d/%d", windows*increment, increment)] = page(t, last)

		mock := airship.NewMockClient(pages)
		result, err := Users(context.Background(), mock, Options{UserIncrement: increment, Logger: zerolog.Nop()})
		require.NoError(t, err, "trial %d", trial)

		seen := make(map[any]bool)
		for _, rec := range result.Users {
			assert.False(t, seen[rec["user_id"]], "trial %d: duplicate %v", trial, rec["user_id"])
			seen[rec["user_id"]] = true
		}
		assert.LessOrEqual(t, mock.CallCount(), windows+1, "trial %d", trial)
	}
}

func TestUsers_DedupWithinAndAcrossWindows(t *testing.T) {
	mock := airship.NewMockClient(map[string]*airship.Page{
		"users/0/3": page(t, users("a", "b", "a")),
		"users/3/3": page(t, users("b", "c", "d")),
		"users/6/3": page(t, users("d")),
	})
	progress := &recordingProgress{}

	result, err := Users(context.Background(), mock, Options{UserIncrement: 3, Progress: progress, Logger: zerolog.Nop()})
	require.NoError(t, err)

	var ids []any
	for _, rec := range result.Users {
		ids = append(ids, rec["user_id"])
	}
	assert.Equal(t, []any{"a", "b", "c", "d"}, ids)
	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, []int{2, 4}, progress.updates)
	assert.Equal(t, 4, progress.done)
}

func TestUsers_EmptyFirstWindow(t *testing.T) {
	mock := airship.NewMockClient(map[string]*airship.Page{
		"users/0/10": airship.MustParsePage(`{"users": []}`),
	})

	result, err := Users(context.Background(), mock, Options{UserIncrement: 10, Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Empty(t, result.Users)
	assert.Equal(t, 1, mock.CallCount())

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"users": []}`, string(out))
}

func TestUsers_NumericAndMissingIDs(t *testing.T) {
	mock := airship.NewMockClient(map[string]*airship.Page{
		"users/0/2": airship.MustParsePage(`{"users": [{"user_id": 17}, {"alias": "no-id"}]}`),
		"users/2/2": airship.MustParsePage(`{"users": [{"user_id": 17}, {"user_id": 18}]}`),
		"users/4/2": airship.MustParsePage(`{"users": [{"alias": "no-id"}]}`),
	})

	result, err := Users(context.Background(), mock, Options{UserIncrement: 2, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Len(t, result.Users, 2)
	assert.Equal(t, json.Number("17"), result.Users[0]["user_id"])
	assert.Equal(t, json.Number("18"), result.Users[1]["user_id"])
	assert.Equal(t, 3, mock.CallCount())
}

func TestUsers_InvalidIncrement(t *testing.T) {
	_, err := Users(context.Background(), airship.NewMockClient(nil), Options{})
	assert.Error(t, err)
}

func TestTags_SingleRequest(t *testing.T) {
	mock := airship.NewMockClient(map[string]*airship.Page{
		"tags/": airship.MustParsePage(`{"tags": ["vip", "beta"], "next_page": "https://x.test/ignored"}`),
	})
	progress := &recordingProgress{}

	result, err := Tags(context.Background(), mock, Options{Progress: progress})
	require.NoError(t, err)

	assert.Equal(t, []any{"vip", "beta"}, result.Tags)
	assert.Equal(t, 1, mock.CallCount())
	assert.True(t, progress.doneHit)
	assert.Equal(t, 2, progress.done)
}

func TestFor(t *testing.T) {
	mock := airship.NewMockClient(map[string]*airship.Page{
		"tags/": airship.MustParsePage(`{"tags": []}`),
	})

	fn := For(Tags)
	result, err := fn(context.Background(), mock, Options{})
	require.NoError(t, err)
	assert.IsType(t, &TagResult{}, result)

	failing := airship.NewMockClient(nil)
	result, err = fn(context.Background(), failing, Options{})
	assert.Error(t, err)
	assert.Nil(t, result, "a failed aggregator yields an untyped nil")

	result, err = ForDevices(Pins)(context.Background(), failing, Options{})
	assert.Error(t, err)
	assert.Nil(t, result)
}
