package deps

import (
	"testing"

	"rallycut/internal/testsupport"
)

func TestCheckBinariesFindsShell(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "Shell", Command: "sh", Description: "test"},
	})
	if len(statuses) != 1 {
		t.Fatalf("got %d statuses", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("sh should be available: %+v", statuses[0])
	}
	if statuses[0].Command == "sh" {
		t.Fatal("expected resolved absolute path")
	}
}

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "Bogus", Command: "definitely-not-a-real-binary-9000"},
		{Name: "Unset", Command: "  "},
	})
	for _, status := range statuses {
		if status.Available {
			t.Fatalf("%s should be unavailable", status.Name)
		}
		if status.Detail == "" {
			t.Fatalf("%s missing detail", status.Name)
		}
	}
}

func TestMissingRequiredSkipsOptional(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: false},
		{Name: "Extra", Available: false, Optional: true},
		{Name: "FFprobe", Available: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "FFmpeg" {
		t.Fatalf("missing = %v", missing)
	}
}

func TestForHonorsOverrides(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Compilation.FFmpegBinary = "/opt/ffmpeg/bin/ffmpeg"
	cfg.Compilation.FFprobeBinary = ""

	requirements := For(cfg)
	if len(requirements) != 2 {
		t.Fatalf("got %d requirements", len(requirements))
	}
	if requirements[0].Command != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("ffmpeg command = %q", requirements[0].Command)
	}
	if requirements[1].Command != "ffprobe" {
		t.Fatalf("ffprobe command = %q", requirements[1].Command)
	}
}
