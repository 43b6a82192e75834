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

// Package output writes an aggregation result as indented JSON.
//
// A Writer accepts exactly one value. Commands collect every page first and
// only then open the destination, so an interrupted or failed run never
// leaves a truncated file behind.
//
// Example usage:
//
//	w, err := output.Open("apids.json")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.Write(result); err != nil {
//	    return err
//	}
package output
