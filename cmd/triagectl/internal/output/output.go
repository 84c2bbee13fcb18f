// Copyright 2025 The Zen Watcher Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kube-zen/zen-triage/pkg/models"
)

// Format represents the output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Placeholder is printed for absent values
const Placeholder = "-"

// ParseFormat parses an output format string
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "yaml":
		return FormatYAML
	default:
		return FormatTable
	}
}

// Printer handles output formatting
type Printer struct {
	format Format
	w      io.Writer
}

// NewPrinter creates a printer writing to w
func NewPrinter(format Format, w io.Writer) *Printer {
	return &Printer{format: format, w: w}
}

// Format returns the printer format
func (p *Printer) Format() Format {
	return p.format
}

// Writer returns the destination writer
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Print prints data in the configured structured format
func (p *Printer) Print(data interface{}) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// Table writes an aligned table. Rows shorter than headers are padded.
func (p *Printer) Table(headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i := range cells {
			cells[i] = Placeholder
			if i < len(row) && row[i] != "" {
				cells[i] = row[i]
			}
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Section writes a heading line
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintf(p.w, "\n=== %s ===\n", title)
}

// Linef writes one formatted line
func (p *Printer) Linef(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// FormatDuration formats a duration as a human-readable string
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// FormatAge formats t relative to now
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	if t.After(now) {
		return "0s"
	}
	return FormatDuration(now.Sub(t))
}

// FormatTimestamp formats ts as local wall time
func FormatTimestamp(ts models.Timestamp) string {
	if ts.IsZero() {
		return Placeholder
	}
	return ts.Format("2006-01-02 15:04:05")
}

// FormatPercent formats a 0-100 share with one decimal
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// Truncate shortens s to at most n runes, marking the cut with "..."
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
