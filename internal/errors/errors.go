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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrUnknownCommand indicates the requested command is not in the command table.
	// Maps to exit code 1.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMissingSecret indicates no secret was given and the secret env var is empty.
	// Maps to exit code 1.
	ErrMissingSecret = errors.New("api secret not provided")

	// ErrUnauthorized indicates the vendor API rejected the app key/secret pair.
	// Maps to exit code 2 when it is the last cause of an exhausted request.
	ErrUnauthorized = errors.New("api credentials rejected")

	// ErrRetriesExhausted indicates a request kept failing past the retry ceiling.
	// Maps to exit code 3.
	ErrRetriesExhausted = errors.New("request retries exhausted")

	// ErrInvalidResponse indicates the API answered with a body that is not a JSON page.
	ErrInvalidResponse = errors.New("invalid api response")

	// ErrCanceled indicates the user interrupted the run.
	// Maps to exit code 130.
	ErrCanceled = errors.New("canceled by user")

	// ErrOutputFailed indicates the aggregated result could not be written.
	// Maps to exit code 1.
	ErrOutputFailed = errors.New("failed to write output")
)
