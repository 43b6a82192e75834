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
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sirseerhq/ua-utils/internal/aggregate"
	"github.com/sirseerhq/ua-utils/internal/airship"
	uaerrors "github.com/sirseerhq/ua-utils/internal/errors"
	"github.com/spf13/cobra"
)

// command is one entry of the command table.
type command struct {
	Name     string
	Resource string
	Summary  string
	Run      aggregate.Func
}

// commandTable maps command names to their aggregators. It is built once
// in main and handed to the root command.
type commandTable map[string]command

// serializer receives the finished result exactly once.
type serializer func(result any) error

func defaultCommands() commandTable {
	return newCommandTable(
		command{Name: "get-tokens", Resource: "device_tokens", Summary: "Device tokens with reported total and active counts", Run: aggregate.For(aggregate.Tokens)},
		command{Name: "get-apids", Resource: "apids", Summary: "APIDs with a locally computed active tally", Run: aggregate.ForDevices(aggregate.APIDs)},
		command{Name: "get-pins", Resource: "device_pins", Summary: "Device PINs with a locally computed active tally", Run: aggregate.ForDevices(aggregate.Pins)},
		command{Name: "get-users", Resource: "users", Summary: "Users, deduplicated across offset windows", Run: aggregate.For(aggregate.Users)},
		command{Name: "get-tags", Resource: "tags", Summary: "Tag list from a single request", Run: aggregate.For(aggregate.Tags)},
	)
}

func newCommandTable(cmds ...command) commandTable {
	table := make(commandTable, len(cmds))
	for _, c := range cmds {
		table[c.Name] = c
	}
	return table
}

func (t commandTable) lookup(name string) (command, bool) {
	c, ok := t[name]
	return c, ok
}

// sorted returns the entries ordered by name.
func (t commandTable) sorted() []command {
	cmds := make([]command, 0, len(t))
	for _, c := range t {
		cmds = append(cmds, c)
	}
	slices.SortFunc(cmds, func(a, b command) int { return strings.Compare(a.Name, b.Name) })
	return cmds
}

func (t commandTable) names() string {
	names := make([]string, 0, len(t))
	for _, c := range t.sorted() {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

// dispatch runs the named aggregator to completion and hands its result to
// serialize. Nothing reaches serialize when the aggregator fails.
func dispatch(ctx context.Context, table commandTable, name string, client airship.Client, opts aggregate.Options, serialize serializer) error {
	c, ok := table.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", uaerrors.ErrUnknownCommand, name)
	}

	result, err := c.Run(ctx, client, opts)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", uaerrors.ErrCanceled, err)
	}

	if err := serialize(result); err != nil {
		return fmt.Errorf("%w: %w", uaerrors.ErrOutputFailed, err)
	}
	return nil
}

// newCommandsCommand lists the command table.
func newCommandsCommand(table commandTable) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List available commands",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, c := range table.sorted() {
				fmt.Fprintf(out, "%-12s %s\n", c.Name, c.Summary)
			}
		},
	}
}
