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

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirseerhq/ua-utils/internal/aggregate"
	"github.com/sirseerhq/ua-utils/internal/airship"
	uaerrors "github.com/sirseerhq/ua-utils/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apidPages() map[string]*airship.Page {
	return map[string]*airship.Page{
		"apids/": airship.MustParsePage(`{"apids":[{"apid":"a1","active":true},{"apid":"a2","active":false}],"next_page":"https://example.test/api/apids/?start=a2"}`),
		"https://example.test/api/apids/?start=a2": airship.MustParsePage(`{"apids":[{"apid":"a3","active":true}]}`),
	}
}

func TestDefaultCommands(t *testing.T) {
	table := defaultCommands()

	for _, name := range []string{"get-tokens", "get-apids", "get-pins", "get-users", "get-tags"} {
		c, ok := table.lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name)
		assert.NotNil(t, c.Run, name)
		assert.NotEmpty(t, c.Resource, name)
	}

	_, ok := table.lookup("get-everything")
	assert.False(t, ok)
	assert.Equal(t, "get-apids, get-pins, get-tags, get-tokens, get-users", table.names())
}

func TestDispatch_WritesOnceAfterAggregation(t *testing.T) {
	client := airship.NewMockClient(apidPages())

	var writes []any
	err := dispatch(context.Background(), defaultCommands(), "get-apids", client,
		aggregate.Options{PageSize: 100},
		func(result any) error {
			writes = append(writes, result)
			return nil
		})

	require.NoError(t, err)
	require.Len(t, writes, 1)
	assert.Equal(t, 2, client.CallCount(), "serializer runs after the last page")

	result, ok := writes[0].(*aggregate.DeviceResult)
	require.True(t, ok)
	assert.Len(t, result.Devices, 3)
	assert.Equal(t, 2, result.Active)
}

func TestDispatch_FailureWritesNothing(t *testing.T) {
	client := airship.NewMockClient(apidPages())
	cause := errors.New("boom")
	client.Errors = []error{cause}

	called := false
	err := dispatch(context.Background(), defaultCommands(), "get-apids", client,
		aggregate.Options{PageSize: 100},
		func(any) error {
			called = true
			return nil
		})

	require.ErrorIs(t, err, cause)
	assert.False(t, called)
}

func TestDispatch_UnknownCommand(t *testing.T) {
	client := airship.NewMockClient(nil)

	err := dispatch(context.Background(), defaultCommands(), "get-nothing", client,
		aggregate.Options{}, func(any) error {
			t.Fatal("serializer must not run")
			return nil
		})

	require.ErrorIs(t, err, uaerrors.ErrUnknownCommand)
	assert.Zero(t, client.CallCount(), "no request for an unknown command")
}

func TestDispatch_SerializerError(t *testing.T) {
	client := airship.NewMockClient(map[string]*airship.Page{
		"tags/": airship.MustParsePage(`{"tags":["a","b"]}`),
	})

	err := dispatch(context.Background(), defaultCommands(), "get-tags", client,
		aggregate.Options{}, func(any) error { return errors.New("disk full") })

	require.ErrorIs(t, err, uaerrors.ErrOutputFailed)
	assert.Contains(t, err.Error(), "disk full")
}

func TestDispatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := airship.NewMockClient(apidPages())
	err := dispatch(ctx, defaultCommands(), "get-apids", client,
		aggregate.Options{PageSize: 100}, func(any) error {
			t.Fatal("serializer must not run")
			return nil
		})

	require.Error(t, err)
	assert.Equal(t, 130, mapErrorToExitCode(err))
}

func TestDispatch_CustomTable(t *testing.T) {
	table := newCommandTable(command{
		Name:     "get-answer",
		Resource: "answers",
		Run: func(context.Context, airship.Client, aggregate.Options) (any, error) {
			return map[string]int{"answer": 42}, nil
		},
	})

	var got any
	err := dispatch(context.Background(), table, "get-answer", airship.NewMockClient(nil),
		aggregate.Options{}, func(v any) error {
			got = v
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"answer": 42}, got)

	err = dispatch(context.Background(), table, "get-apids", airship.NewMockClient(nil),
		aggregate.Options{}, func(any) error { return nil })
	assert.ErrorIs(t, err, uaerrors.ErrUnknownCommand, "only the given table is consulted")
}

func TestCommandsSubcommand(t *testing.T) {
	root := newRootCommand(defaultCommands())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"commands"})

	require.NoError(t, root.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "get-apids"))
	assert.True(t, strings.HasPrefix(lines[4], "get-users"))
}
