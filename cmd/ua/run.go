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
	"io"
	"os"

	"github.com/sirseerhq/ua-utils/internal/aggregate"
	"github.com/sirseerhq/ua-utils/internal/airship"
	"github.com/sirseerhq/ua-utils/internal/config"
	uaerrors "github.com/sirseerhq/ua-utils/internal/errors"
	"github.com/sirseerhq/ua-utils/internal/logging"
	"github.com/sirseerhq/ua-utils/internal/output"
	"github.com/sirseerhq/ua-utils/internal/progress"
	"golang.org/x/term"
)

// runOptions holds the parsed command line of one invocation.
type runOptions struct {
	command         string
	appKey          string
	secret          string
	outFile         string
	outChanged      bool
	verbose         bool
	configPath      string
	baseURL         string
	pageSize        int
	pageSizeChanged bool
	stderr          io.Writer
}

// run executes one command from table
func run(ctx context.Context, table commandTable, opts runOptions) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.baseURL != "" {
		cfg.SetBaseURL(opts.baseURL)
	}
	if opts.pageSizeChanged {
		cfg.API.PageSize = opts.pageSize
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	stderr := opts.stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	logger := logging.New(logging.Config{
		Level:   cfg.Logging.Level,
		Verbose: opts.verbose,
		Out:     stderr,
		NoColor: !isTerminal(stderr),
	})
	logger = logging.WithRun(logger, logging.NewRunID(), opts.command)

	secret := opts.secret
	if secret == "" {
		secret = cfg.Secret()
	}
	if secret == "" {
		return fmt.Errorf("%w: pass it as an argument or set %s", uaerrors.ErrMissingSecret, cfg.API.SecretEnv)
	}

	httpClient, err := airship.NewHTTPClient(
		airship.Credentials{AppKey: opts.appKey, Secret: secret},
		airship.HTTPOptions{
			BaseURL:          cfg.API.BaseURL,
			MaxResponseBytes: cfg.API.MaxResponseBytes,
		},
	)
	if err != nil {
		return err
	}
	client := airship.NewRetryClient(httpClient, &airship.RetryConfig{
		MaxRetries:        cfg.Retry.MaxRetries,
		InitialBackoff:    cfg.Retry.InitialBackoff,
		MaxBackoff:        cfg.Retry.MaxBackoff,
		BackoffMultiplier: 2.0,
	}, logger)

	outPath := opts.outFile
	if !opts.outChanged {
		outPath = cfg.Output.DefaultFile
	}

	entry, _ := table.lookup(opts.command)
	tracker := progress.New(stderr, logger, entry.Resource)

	logger.Debug().
		Str("base_url", airship.Redact(cfg.API.BaseURL)).
		Int("page_size", cfg.API.PageSize).
		Int("max_retries", cfg.Retry.MaxRetries).
		Str("out", outPath).
		Msg("Starting")

	aggOpts := aggregate.Options{
		PageSize:      cfg.API.PageSize,
		UserIncrement: cfg.API.UserIncrement,
		Progress:      tracker,
		Logger:        logger,
	}
	if err := dispatch(ctx, table, opts.command, client, aggOpts, writeTo(outPath)); err != nil {
		return err
	}

	logger.Info().Str("out", describeOutput(outPath)).Msg("Wrote result")
	return nil
}

// writeTo returns a serializer that opens path only when the result is ready.
func writeTo(path string) serializer {
	return func(result any) error {
		w, err := output.Open(path)
		if err != nil {
			return err
		}
		if err := w.Write(result); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	}
}

func describeOutput(path string) string {
	if path == "" || path == output.StdoutPath {
		return "stdout"
	}
	return path
}

// isTerminal checks if the given writer is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
