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

package testutil

import "fmt"

// DevicePage builds an apids or device_pins listing page. Record i is active
// when active[i] is true; next is omitted when empty.
func DevicePage(key string, ids []string, active []bool, next string) map[string]any {
	records := make([]map[string]any, 0, len(ids))
	for i, id := range ids {
		records = append(records, map[string]any{
			deviceIDField(key): id,
			"active":           i < len(active) && active[i],
		})
	}

	page := map[string]any{key: records}
	if next != "" {
		page["next_page"] = next
	}
	return page
}

func deviceIDField(key string) string {
	switch key {
	case "apids":
		return "apid"
	case "device_pins":
		return "device_pin"
	default:
		return "id"
	}
}

// TokenPage builds a device_tokens listing page carrying the two counters.
func TokenPage(total, active int, tokens []string, next string) map[string]any {
	records := make([]map[string]any, 0, len(tokens))
	for _, tok := range tokens {
		records = append(records, map[string]any{
			"device_token": tok,
			"active":       true,
		})
	}

	page := map[string]any{
		"device_tokens_count":        total,
		"active_device_tokens_count": active,
		"device_tokens":              records,
	}
	if next != "" {
		page["next_page"] = next
	}
	return page
}

// UsersPage builds one offset window of the user listing.
func UsersPage(ids ...string) map[string]any {
	users := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		users = append(users, map[string]any{
			"user_id": id,
			"alias":   fmt.Sprintf("alias-%s", id),
		})
	}
	return map[string]any{"users": users}
}

// UsersPath returns the path of the user window starting at offset.
func UsersPath(offset, increment int) string {
	return fmt.Sprintf("users/%d/%d", offset, increment)
}

// Sequence returns n identifiers formatted with prefix, starting at start.
func Sequence(prefix string, start, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", prefix, start+i)
	}
	return ids
}
