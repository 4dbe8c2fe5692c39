package description

import (
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	got := Format([]Range{
		{Start: 5, End: 19},
		{Start: 83, End: 107},
		{Start: 3725, End: 3750},
	})
	want := "[Highlights]\n0:05 - 0:19\n1:23 - 1:47\n1:02:05 - 1:02:30"
	if got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}

func TestFormatEmpty(t *testing.T) {
	if got := Format(nil); got != Header {
		t.Fatalf("Format(nil) = %q", got)
	}
}

func TestParse(t *testing.T) {
	text := strings.Join([]string{
		"Great match against the club champion.",
		"",
		"[Highlights]",
		"0:05 - 0:19",
		"not a timestamp line",
		"1:23 - 1:47",
		"2:10 - 1:50",
		"",
		"3:00 - 3:30",
	}, "\n")

	got := Parse(text)
	if len(got) != 2 {
		t.Fatalf("parsed %d ranges, want 2: %+v", len(got), got)
	}
	if got[0] != (Range{Start: 5, End: 19}) {
		t.Fatalf("first range = %+v", got[0])
	}
	if got[1] != (Range{Start: 83, End: 107}) {
		t.Fatalf("second range = %+v", got[1])
	}
}

func TestParseStopsAtNextHeader(t *testing.T) {
	text := strings.Join([]string{
		"[Highlights]",
		"0:05 - 0:19",
		"[Lineup]",
		"0:30 - 0:45",
	}, "\n")
	if got := Parse(text); len(got) != 1 {
		t.Fatalf("parsed %d ranges, want 1", len(got))
	}
}

func TestParseHourForm(t *testing.T) {
	got := Parse("[Highlights]\n1:02:05 - 1:02:30")
	if len(got) != 1 || got[0].Start != 3725 || got[0].End != 3750 {
		t.Fatalf("parsed %+v", got)
	}
}

func TestParseRejectsMalformedTimestamps(t *testing.T) {
	cases := []string{
		"[Highlights]\n0:75 - 1:10",
		"[Highlights]\n5 - 10",
		"[Highlights]\n0:0five - 0:10",
		"[Highlights]\n0:10",
	}
	for _, text := range cases {
		if got := Parse(text); got != nil {
			t.Fatalf("Parse(%q) = %+v, want nil", text, got)
		}
	}
}

func TestParseWithoutSection(t *testing.T) {
	if got := Parse("just a description\n0:05 - 0:19"); got != nil {
		t.Fatalf("Parse = %+v, want nil", got)
	}
}

func TestRoundTrip(t *testing.T) {
	in := []Range{
		{Start: 5, End: 19},
		{Start: 83, End: 107},
		{Start: 610, End: 640},
	}
	got := Parse(Format(in))
	if len(got) != len(in) {
		t.Fatalf("round trip length = %d", len(got))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Fatalf("range %d = %+v, want %+v", i, got[i], in[i])
		}
	}
}
