package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cherryctl.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
engine: podman
app:
  ref: registry.local/cherry:dev
resources:
  memory: 512MiB
health:
  delay: 2s
logging:
  default:
    options:
      max-size: 20m
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine != "podman" {
		t.Fatalf("Engine = %q, want podman", cfg.Engine)
	}
	if cfg.App.Ref != "registry.local/cherry:dev" {
		t.Fatalf("App.Ref = %q", cfg.App.Ref)
	}
	if cfg.App.Dockerfile != "Dockerfile" {
		t.Fatalf("App.Dockerfile = %q, want default kept", cfg.App.Dockerfile)
	}
	if cfg.Health.Delay != 2*time.Second {
		t.Fatalf("Health.Delay = %v, want 2s", cfg.Health.Delay)
	}
	if diff := cmp.Diff(map[string]string{"max-size": "20m"}, cfg.Logging.Default.Options); diff != "" {
		t.Fatalf("Logging.Default.Options mismatch (-want +got):\n%s", diff)
	}
	if cfg.Logging.Default.Driver != "json-file" {
		t.Fatalf("Logging.Default.Driver = %q, want default kept", cfg.Logging.Default.Driver)
	}
}

func TestLoadReplacesMaps(t *testing.T) {
	path := writeConfig(t, `
test:
  env:
    OTHER: x
logging:
  default:
    driver: syslog
    options:
      tag: cherry
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff(map[string]string{"OTHER": "x"}, cfg.Test.Env); diff != "" {
		t.Fatalf("Test.Env mismatch (-want +got):\n%s", diff)
	}
	want := LogDriver{Driver: "syslog", Options: map[string]string{"tag": "cherry"}}
	if diff := cmp.Diff(want, cfg.Logging.Default); diff != "" {
		t.Fatalf("Logging.Default mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Default().Logging.Constrained, cfg.Logging.Constrained); diff != "" {
		t.Fatalf("Logging.Constrained changed (-want +got):\n%s", diff)
	}
}

func TestLoadClearsMap(t *testing.T) {
	cfg, err := Load(writeConfig(t, "test:\n  env: {}\n"), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Test.Env) != 0 {
		t.Fatalf("Test.Env = %v, want empty", cfg.Test.Env)
	}
	if cfg.Test.Ref != Default().Test.Ref {
		t.Fatalf("Test.Ref = %q, want default kept", cfg.Test.Ref)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "enigne: podman\n")
	if _, err := Load(path, nil); !errors.Is(err, ErrLoad) {
		t.Fatalf("Load() error = %v, want ErrLoad", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad image ref", "app:\n  ref: \"Not A Ref\"\n"},
		{"bad memory", "resources:\n  memory: lots\n"},
		{"negative cpus", "resources:\n  cpus: \"-1\"\n"},
		{"port out of range", "ports:\n  - {name: http, host: 70000, container: 8080}\n"},
		{"health port missing", "health:\n  port: admin\n"},
		{"unbalanced build flags", "build:\n  flags: \"--label 'x\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("Load() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "build:\n  flags: --network host\n")

	cfg, err := Load(path, env(map[string]string{
		EngineEnv:     "podman",
		BuildFlagsEnv: `--build-arg "GREETING=hello world"`,
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine != "podman" {
		t.Fatalf("Engine = %q, want podman", cfg.Engine)
	}

	flags, err := cfg.BuildFlags()
	if err != nil {
		t.Fatalf("BuildFlags() error = %v", err)
	}
	want := []string{"--network", "host", "--build-arg", "GREETING=hello world"}
	if diff := cmp.Diff(want, flags); diff != "" {
		t.Fatalf("BuildFlags() mismatch (-want +got):\n%s", diff)
	}
}

func TestPort(t *testing.T) {
	cfg := Default()
	p, ok := cfg.Port("chat")
	if !ok || p.Host != 33334 {
		t.Fatalf("Port(chat) = %+v, %v", p, ok)
	}
	if _, ok := cfg.Port("admin"); ok {
		t.Fatal("Port(admin) found, want missing")
	}
}

func TestUseShell(t *testing.T) {
	cfg := Default()
	if !cfg.UseShell(true) || cfg.UseShell(false) {
		t.Fatal("UseShell should follow the platform default when unset")
	}
	off := false
	cfg.Shell = &off
	if cfg.UseShell(true) {
		t.Fatal("UseShell(true) = true with shell disabled in config")
	}
}
