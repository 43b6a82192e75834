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

// Package main implements the ua command-line interface.
// This tool pulls paginated resource collections from the Urban Airship
// REST API and writes the aggregated result as indented JSON.
//
// Commands:
//   - get-tokens: device tokens plus the reported total and active counts
//   - get-apids: APIDs plus a locally computed active tally
//   - get-pins: device PINs plus a locally computed active tally
//   - get-users: users, deduplicated across offset windows
//   - get-tags: the tag list, fetched in a single request
//
// Usage:
//
//	ua <command> <app_key> [secret] [flags]
//
// Example:
//
//	export UA_SECRET=your_master_secret
//	ua get-apids your_app_key --out apids.json
//
// Exit codes:
//   - 0: Success
//   - 1: General error or unknown command
//   - 2: Credentials rejected by the API
//   - 3: Request retries exhausted
//   - 130: Interrupted
package main
