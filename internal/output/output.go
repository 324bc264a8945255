// Package output renders aggregation results and query-log views.
// It supports text, JSON, and table formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/salescope-dev/salescope/internal/aggregate"
	"github.com/salescope-dev/salescope/internal/dataset"
)

// noData is returned for empty or absent results.
const noData = "No data found."

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// FormatResult renders a tagged result as its canonical display string.
// Mappings become a "Results:" header followed by one aligned "key : value"
// line per bucket, sorted by value descending; the key column is padded to
// the longest key. Empty results become a fixed sentinel; text and error
// results pass through as-is.
func FormatResult(res aggregate.Result) string {
	switch res.Kind {
	case aggregate.KindMapping:
		return formatMapping(res.Entries)
	case aggregate.KindScalar:
		return formatNumber(res.Scalar)
	default:
		if res.Text == "" {
			return noData
		}
		return res.Text
	}
}

func formatMapping(entries []dataset.Group) string {
	if len(entries) == 0 {
		return noData
	}

	sorted := make([]dataset.Group, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	width := 0
	for _, g := range sorted {
		if len(g.Key) > width {
			width = len(g.Key)
		}
	}

	var sb strings.Builder
	sb.WriteString("Results:")
	for _, g := range sorted {
		sb.WriteString(fmt.Sprintf("\n%-*s : %s", width, g.Key, formatNumber(g.Value)))
	}
	return sb.String()
}

// formatNumber renders whole values without a fraction and everything else
// with two decimals, matching currency amounts.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Writer handles writing formatted output for the CLI commands.
type Writer struct {
	w      io.Writer
	format Format
}

// New creates a new output Writer.
func New(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v interface{}) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSection outputs one titled group of buckets in the configured format.
// JSON callers should collect sections themselves and use WriteJSON.
func (wr *Writer) WriteSection(title string, groups []dataset.Group) error {
	switch wr.format {
	case FormatTable:
		return wr.writeSectionTable(title, groups)
	default:
		return wr.writeSectionText(title, groups)
	}
}

func (wr *Writer) writeSectionText(title string, groups []dataset.Group) error {
	if _, err := fmt.Fprintf(wr.w, "=== %s ===\n", title); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(wr.w, formatMapping(groups)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(wr.w)
	return err
}

func (wr *Writer) writeSectionTable(title string, groups []dataset.Group) error {
	if _, err := fmt.Fprintf(wr.w, "=== %s ===\n", title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE")
	fmt.Fprintln(tw, "---\t-----")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\n", g.Key, formatNumber(g.Value))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(wr.w)
	return err
}
