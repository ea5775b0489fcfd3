package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestUserConfigFile(t *testing.T) {
	p := UserConfigFile()
	if filepath.Base(p) != "config.yaml" {
		t.Fatalf("UserConfigFile() = %q, want config.yaml basename", p)
	}
	if !strings.HasPrefix(p, Config()) {
		t.Fatalf("UserConfigFile() = %q, not under %q", p, Config())
	}
}

func TestProjectConfigFile(t *testing.T) {
	got := ProjectConfigFile("/srv/app")
	want := filepath.Join("/srv/app", ProjectConfigName)
	if got != want {
		t.Fatalf("ProjectConfigFile() = %q, want %q", got, want)
	}
}
