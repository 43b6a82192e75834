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
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirseerhq/ua-utils/internal/airship"
	uaerrors "github.com/sirseerhq/ua-utils/internal/errors"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	airship.Version = version
	rootCmd := newRootCommand(defaultCommands())
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, uaerrors.ErrUnknownCommand) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	code := mapErrorToExitCode(err)
	stop()
	os.Exit(code)
}

// newRootCommand builds the ua root command dispatching into table.
func newRootCommand(table commandTable) *cobra.Command {
	var opts runOptions

	rootCmd := &cobra.Command{
		Use:   "ua <command> <app_key> [secret]",
		Short: "Pull paginated resources from the Urban Airship API",
		Long: `ua fetches every page of a resource collection from the Urban Airship
REST API, merges the pages in memory and writes the result once as indented JSON.

Commands: ` + table.names() + `

The secret defaults to the environment variable named by api.secret_env
(UA_SECRET unless configured otherwise).`,
		Version:       version,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := table.lookup(args[0]); !ok {
				stderr := cmd.ErrOrStderr()
				fmt.Fprintln(stderr, "Unknown command")
				fmt.Fprintln(stderr)
				fmt.Fprint(stderr, cmd.UsageString())
				return fmt.Errorf("%w: %s", uaerrors.ErrUnknownCommand, args[0])
			}

			opts.command = args[0]
			opts.appKey = args[1]
			if len(args) == 3 {
				opts.secret = args[2]
			}
			opts.outChanged = cmd.Flags().Changed("out")
			opts.pageSizeChanged = cmd.Flags().Changed("page-size")
			opts.stderr = cmd.ErrOrStderr()

			return run(cmd.Context(), table, opts)
		},
	}

	rootCmd.Flags().StringVarP(&opts.outFile, "out", "o", "ua.json", `Output file path ("-" for stdout)`)
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.Flags().StringVar(&opts.configPath, "config", "", "Config file path (default: .ua.yaml or ~/.ua/config.yaml)")
	rootCmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Override the API base URL")
	rootCmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Override the page size limit")

	rootCmd.AddCommand(newCommandsCommand(table))

	return rootCmd
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, uaerrors.ErrCanceled) || errors.Is(err, context.Canceled) {
		return 130
	}

	if errors.Is(err, uaerrors.ErrRetriesExhausted) {
		if errors.Is(err, uaerrors.ErrUnauthorized) {
			return 2 // Credentials rejected on the last attempt
		}
		return 3
	}

	return 1 // General error
}
