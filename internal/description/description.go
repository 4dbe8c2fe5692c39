// Package description formats and parses the plain-text highlight block
// embedded in match descriptions.
//
// The block looks like:
//
//	[Highlights]
//	0:05 - 0:19
//	1:23 - 1:47
//
// Timestamps use M:SS, or H:MM:SS past the hour. The section ends at the
// first blank line or the next bracketed header.
package description

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Header opens the highlight section.
const Header = "[Highlights]"

// Range is one highlight span in seconds relative to the source start.
type Range struct {
	Start float64
	End   float64
}

// Format renders ranges as a highlight section. Ranges are emitted in the
// given order; an empty set yields just the header.
func Format(ranges []Range) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, r := range ranges {
		b.WriteByte('\n')
		b.WriteString(formatTimestamp(r.Start))
		b.WriteString(" - ")
		b.WriteString(formatTimestamp(r.End))
	}
	return b.String()
}

// Parse extracts highlight ranges from a description. Text before the
// header is ignored; lines that do not parse as a timestamp pair, or whose
// end does not come after their start, are skipped. Returns nil when the
// text has no highlight section.
func Parse(text string) []Range {
	var (
		ranges    []Range
		inSection bool
	)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !inSection {
			if strings.EqualFold(trimmed, Header) {
				inSection = true
			}
			continue
		}
		if trimmed == "" {
			break
		}
		if strings.HasPrefix(trimmed, "[") {
			break
		}
		r, ok := parseLine(trimmed)
		if !ok {
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges
}

func parseLine(line string) (Range, bool) {
	parts := strings.SplitN(line, "-", 2)
	if len(parts) != 2 {
		return Range{}, false
	}
	start, ok := parseTimestamp(strings.TrimSpace(parts[0]))
	if !ok {
		return Range{}, false
	}
	end, ok := parseTimestamp(strings.TrimSpace(parts[1]))
	if !ok {
		return Range{}, false
	}
	if end <= start {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

func parseTimestamp(value string) (float64, bool) {
	fields := strings.Split(value, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, false
	}
	total := 0
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	// Minutes and seconds past the first field must be two digits max.
	for _, field := range fields[1:] {
		if n, _ := strconv.Atoi(field); n > 59 {
			return 0, false
		}
	}
	return float64(total), true
}

func formatTimestamp(seconds float64) string {
	total := int(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
