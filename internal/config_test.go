package internal

import (
	"log/slog"
	"testing"
)

func TestLevel(t *testing.T) {
	defer func() {
		SetDebug(false)
		SetQuiet(false)
	}()

	tests := []struct {
		name  string
		debug bool
		quiet bool
		want  slog.Level
	}{
		{"default", false, false, slog.LevelInfo},
		{"quiet", false, true, slog.LevelWarn},
		{"debug", true, false, slog.LevelDebug},
		{"debug wins over quiet", true, true, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetDebug(tt.debug)
			SetQuiet(tt.quiet)
			if got := Level(); got != tt.want {
				t.Fatalf("Level() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVersionStringLocal(t *testing.T) {
	if !IsLocal() {
		t.Skip("built with pipeline linker flags")
	}
	if got := VersionString(); got != defaultLocalBuild {
		t.Fatalf("VersionString() = %q, want %q", got, defaultLocalBuild)
	}
	if got := Version(); got != defaultUndefined {
		t.Fatalf("Version() = %q, want %q", got, defaultUndefined)
	}
}
