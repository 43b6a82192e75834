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

// Package progress reports how many records an aggregation has collected.
// On a terminal it redraws a single status line; otherwise it emits one
// structured log event per page so redirected output stays readable.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Tracker collects statistics during one aggregation. Create a new tracker
// at the start of each command run.
type Tracker struct {
	out         io.Writer
	logger      zerolog.Logger
	resource    string
	interactive bool
	startTime   time.Time
	pages       int
	records     int
	now         func() time.Time
}

// Summary is the final state of a tracker.
type Summary struct {
	Resource string
	Pages    int
	Records  int
	Elapsed  time.Duration
}

// New creates a tracker for resource writing status lines to out.
func New(out io.Writer, logger zerolog.Logger, resource string) *Tracker {
	return &Tracker{
		out:         out,
		logger:      logger,
		resource:    resource,
		interactive: isTerminal(out),
		startTime:   time.Now(),
		now:         time.Now,
	}
}

// isTerminal checks if the given writer is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Update records one more fetched page holding records in total so far.
func (t *Tracker) Update(records, expected int) {
	t.pages++
	t.records = records

	if t.interactive {
		fmt.Fprintf(t.out, "\r\033[K%s", t.line(expected))
		return
	}

	event := t.logger.Info().
		Str("resource", t.resource).
		Int("page", t.pages).
		Int("records", records)
	if expected > 0 {
		event = event.Int("expected", expected)
	}
	event.Msg(t.line(expected))
}

// Done clears the status line and logs the final count.
func (t *Tracker) Done(records int) {
	t.records = records
	if t.interactive {
		fmt.Fprint(t.out, "\r\033[K")
	}

	s := t.Summary()
	t.logger.Info().
		Str("resource", s.Resource).
		Int("pages", s.Pages).
		Int("records", s.Records).
		Dur("elapsed", s.Elapsed).
		Msgf("Done, retrieved %d %s", s.Records, s.Resource)
}

// Summary returns the statistics collected so far.
func (t *Tracker) Summary() Summary {
	return Summary{
		Resource: t.resource,
		Pages:    t.pages,
		Records:  t.records,
		Elapsed:  t.now().Sub(t.startTime),
	}
}

// line formats the status text with percentage and ETA when the total is known.
func (t *Tracker) line(expected int) string {
	if expected <= 0 {
		return fmt.Sprintf("Retrieved %d %s | Page %d", t.records, t.resource, t.pages)
	}

	percent := float64(t.records) * 100 / float64(expected)
	elapsed := t.now().Sub(t.startTime)

	var eta string
	if t.records > 0 && t.records < expected {
		totalTime := elapsed.Seconds() * float64(expected) / float64(t.records)
		remaining := time.Duration(totalTime-elapsed.Seconds()) * time.Second
		if remaining > 0 {
			eta = fmt.Sprintf(" | ETA: %s", remaining.Round(time.Second))
		}
	}

	return fmt.Sprintf("Retrieved %d of %d %s [%.1f%%] | Page %d%s",
		t.records, expected, t.resource, percent, t.pages, eta)
}
