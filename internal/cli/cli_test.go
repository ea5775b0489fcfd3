package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/cherryrecorder/cherryctl/internal/paths"
	"github.com/cherryrecorder/cherryctl/internal/project"
	"github.com/spf13/afero"
)

func parse(t *testing.T, args ...string) (*kong.Context, error) {
	t.Helper()
	parser, err := kong.New(&RootCmd, options(context.Background())...)
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}
	return parser.Parse(args)
}

func TestParseDeploy(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		args      []string
		target    string
		push      bool
		namespace string
	}{
		{"defaults", nil, "app", false, ""},
		{"implicit deploy", []string{"--target", "test"}, "test", false, ""},
		{"explicit deploy", []string{"deploy", "-t", "k8s", "--push", "--dockerhub-username", "cherry"}, "k8s", true, "cherry"},
		{"global flags after command", []string{"deploy", "--target", "app", "-C", dir, "-d"}, "app", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kctx, err := parse(t, tt.args...)
			if err != nil {
				t.Fatalf("Parse(%v) error = %v", tt.args, err)
			}
			if kctx.Command() != "deploy" {
				t.Fatalf("Command() = %q, want deploy", kctx.Command())
			}

			d := RootCmd.Deploy
			if d.Target != tt.target || d.Push != tt.push || d.DockerhubUsername != tt.namespace {
				t.Fatalf("Deploy = %+v, want target=%s push=%v namespace=%q", d, tt.target, tt.push, tt.namespace)
			}
		})
	}
}

func TestParseRejectsUnknownTarget(t *testing.T) {
	if _, err := parse(t, "--target", "prod"); err == nil {
		t.Fatal("Parse() succeeded for unknown target")
	}
}

func TestParseSubcommands(t *testing.T) {
	for _, name := range []string{"recover", "version"} {
		kctx, err := parse(t, name)
		if err != nil {
			t.Fatalf("Parse(%s) error = %v", name, err)
		}
		if kctx.Command() != name {
			t.Fatalf("Command() = %q, want %s", kctx.Command(), name)
		}
	}
}

func TestOpenWorkspaceProjectConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(paths.ProjectConfigFile(dir), []byte("engine: podman\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".dockerignore"), []byte("X"), 0644); err != nil {
		t.Fatal(err)
	}

	ws, err := openWorkspace(dir, "", func(string) string { return "" })
	if err != nil {
		t.Fatalf("openWorkspace() error = %v", err)
	}
	if ws.cfg.Engine != "podman" {
		t.Fatalf("Engine = %q, want podman from the project file", ws.cfg.Engine)
	}
	if !filepath.IsAbs(ws.dir) {
		t.Fatalf("dir = %q, want absolute", ws.dir)
	}

	data, err := afero.ReadFile(ws.fs, ".dockerignore")
	if err != nil || string(data) != "X" {
		t.Fatalf("workspace fs read = %q, %v; want rooted at the project", data, err)
	}
}

func TestOpenWorkspaceExplicitConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(t.TempDir(), "other.yaml")
	if err := os.WriteFile(path, []byte("engine: nerdctl\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ws, err := openWorkspace(dir, path, nil)
	if err != nil {
		t.Fatalf("openWorkspace() error = %v", err)
	}
	if ws.cfg.Engine != "nerdctl" {
		t.Fatalf("Engine = %q, want nerdctl", ws.cfg.Engine)
	}
}

func TestOpenWorkspaceEnvOverride(t *testing.T) {
	getenv := func(k string) string {
		if k == project.EngineEnv {
			return "podman"
		}
		return ""
	}

	ws, err := openWorkspace(t.TempDir(), filepath.Join(t.TempDir(), "none.yaml"), getenv)
	if err != nil {
		t.Fatalf("openWorkspace() error = %v", err)
	}
	if ws.cfg.Engine != "podman" {
		t.Fatalf("Engine = %q, want podman", ws.cfg.Engine)
	}
}

func TestOpenWorkspaceInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(paths.ProjectConfigFile(dir), []byte("ports: [{name: http, host: 0, container: 8080}]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := openWorkspace(dir, "", nil); !errors.Is(err, project.ErrConfig) {
		t.Fatalf("openWorkspace() error = %v, want %v", err, project.ErrConfig)
	}
}

func TestDiscoverConfigFallsBackToUserFile(t *testing.T) {
	if got := discoverConfig(t.TempDir()); got != paths.UserConfigFile() {
		t.Fatalf("discoverConfig() = %q, want %q", got, paths.UserConfigFile())
	}
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer

	slog.New(NewHandler(&buf, true, false)).Info("hello", "k", "v")
	if strings.Contains(buf.String(), "time=") {
		t.Fatalf("interactive output has a timestamp: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "msg=hello k=v") {
		t.Fatalf("output = %q", buf.String())
	}

	buf.Reset()
	slog.New(NewHandler(&buf, false, true)).Info("hello")
	if !strings.Contains(buf.String(), "time=") || !strings.Contains(buf.String(), "source=") {
		t.Fatalf("non-interactive verbose output = %q, want time and source", buf.String())
	}
}
