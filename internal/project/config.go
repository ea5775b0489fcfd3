package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/distribution/reference"
	"github.com/mattn/go-shellwords"
	"gopkg.in/yaml.v3"
)

const (

	// Overrides the container engine binary.
	EngineEnv = "CHERRYCTL_ENGINE"

	// Extra build flags, split with shell quoting rules.
	BuildFlagsEnv = "CHERRYCTL_BUILD_FLAGS"
)

// Deployment settings for all three modes.
type Config struct {
	Engine    string    `yaml:"engine"`    // Container engine CLI (docker, podman).
	Shell     *bool     `yaml:"shell"`     // Run the engine through the host shell. Nil picks per OS.
	Context   string    `yaml:"context"`   // Build context, relative to the project directory.
	App       Image     `yaml:"app"`       // Local application image.
	Test      TestImage `yaml:"test"`      // Test-suite image.
	K8s       Image     `yaml:"k8s"`       // Image built for Kubernetes deployment.
	Ignore    Ignore    `yaml:"ignore"`    // Ignore-file locations.
	Ports     []Port    `yaml:"ports"`     // Host to container port table (app only).
	Resources Resources `yaml:"resources"` // Resource limits (app only).
	Logging   Logging   `yaml:"logging"`   // Logging driver variants (app only).
	EnvFiles  []string  `yaml:"env_files"` // Env-file candidates in priority order (app only).
	Health    Health    `yaml:"health"`    // Post-run health check (app only).
	Build     Build     `yaml:"build"`     // Flags common to every build.
}

// An image built from a dockerfile.
type Image struct {
	Ref        string `yaml:"ref"`        // Local image reference (e.g. "name:tag").
	Dockerfile string `yaml:"dockerfile"` // Dockerfile, relative to the project directory.
	Container  string `yaml:"container"`  // Container name, when the image is run detached.
}

// The test-suite image and what its run needs.
type TestImage struct {
	Image `yaml:",inline"`
	Env   map[string]string `yaml:"env"` // Placeholder credentials injected into the test run.
}

// Ignore-file locations, relative to the project directory.
type Ignore struct {
	Target     string `yaml:"target"`      // Read by the engine during builds.
	TestSource string `yaml:"test_source"` // Substituted for Target during test builds.
	Backup     string `yaml:"backup"`      // Holds the original Target while substituted.
}

// A published port.
type Port struct {
	Name      string `yaml:"name"`
	Host      int    `yaml:"host"`
	Container int    `yaml:"container"`
}

// Resource limits for the application container.
type Resources struct {
	Memory string `yaml:"memory"` // Human-readable size (e.g. "1GiB"). Empty means unlimited.
	CPUs   string `yaml:"cpus"`   // Fractional CPU count (e.g. "1.5"). Empty means unlimited.
}

// A logging driver and its options.
type LogDriver struct {
	Driver  string            `yaml:"driver"`
	Options map[string]string `yaml:"options"`
}

// Logging driver variants. Constrained is used on small hosts.
type Logging struct {
	Default     LogDriver `yaml:"default"`
	Constrained LogDriver `yaml:"constrained"`
}

// Post-run health check of the application container.
type Health struct {
	Host    string        `yaml:"host"`    // Host the published port is reached on.
	Port    string        `yaml:"port"`    // Name of the entry in the port table to probe.
	Path    string        `yaml:"path"`    // HTTP path of the health endpoint.
	Delay   time.Duration `yaml:"delay"`   // Wait between container start and probe.
	Timeout time.Duration `yaml:"timeout"` // Timeout of the probe request.
}

// Flags common to every build.
type Build struct {
	Pull     bool   `yaml:"pull"`     // Always pull newer base images.
	Flags    string `yaml:"flags"`    // Extra engine build flags, shell-quoted.
	Source   string `yaml:"source"`   // Source repository URL recorded as an image label.
	Revision string `yaml:"revision"` // Source revision recorded as an image label.
}

// Returns the built-in settings of the CherryRecorder server project.
func Default() *Config {
	return &Config{
		Engine:  "docker",
		Context: ".",
		App: Image{
			Ref:        "cherryrecorder-server:latest",
			Dockerfile: "Dockerfile",
			Container:  "cherryrecorder-server-container",
		},
		Test: TestImage{
			Image: Image{
				Ref:        "cherryrecorder-server-test:latest",
				Dockerfile: "Dockerfile.test",
			},
			Env: map[string]string{"GOOGLE_MAPS_API_KEY": "dummy_key"},
		},
		K8s: Image{
			Ref:        "cherryrecorder-server:k8s-latest",
			Dockerfile: "Dockerfile",
		},
		Ignore: Ignore{
			Target:     ".dockerignore",
			TestSource: "Dockerfile.test.dockerignore",
			Backup:     ".dockerignore.original",
		},
		Ports: []Port{
			{Name: "http", Host: 8080, Container: 8080},
			{Name: "chat", Host: 33334, Container: 33334},
			{Name: "echo", Host: 33333, Container: 33333},
		},
		Resources: Resources{
			Memory: "1GiB",
			CPUs:   "1.0",
		},
		Logging: Logging{
			Default: LogDriver{
				Driver:  "json-file",
				Options: map[string]string{"max-size": "50m", "max-file": "5"},
			},
			Constrained: LogDriver{
				Driver:  "local",
				Options: map[string]string{"max-size": "10m", "max-file": "2"},
			},
		},
		EnvFiles: []string{".env", "deploy/.env", "config/.env"},
		Health: Health{
			Host:    "localhost",
			Port:    "http",
			Path:    "/health",
			Delay:   5 * time.Second,
			Timeout: 5 * time.Second,
		},
		Build: Build{
			Pull: true,
		},
	}
}

// Loads settings from the YAML file at path on top of [Default], applies
// environment overrides, and validates the result.
//
// An empty path, or a path that does not exist, yields the defaults.
// Unknown keys in the file are rejected.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		default:
			if err := decode(data, cfg); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
			}
		}
	}

	cfg.applyEnv(getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decodes YAML over an existing configuration.
//
// Maps the file sets are replaced rather than merged, so a file can drop
// default entries (a different logging driver takes none of the default
// driver's options).
func decode(data []byte, cfg *Config) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for _, m := range cfg.replaceableMaps() {
		if hasKey(&doc, m.path...) {
			*m.value = nil
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// A map-valued setting and its YAML key path.
type replaceableMap struct {
	path  []string
	value *map[string]string
}

// Returns the map-valued settings that carry non-empty defaults.
func (c *Config) replaceableMaps() []replaceableMap {
	return []replaceableMap{
		{[]string{"test", "env"}, &c.Test.Env},
		{[]string{"logging", "default", "options"}, &c.Logging.Default.Options},
		{[]string{"logging", "constrained", "options"}, &c.Logging.Constrained.Options},
	}
}

// Whether the YAML document sets the nested key path.
func hasKey(doc *yaml.Node, path ...string) bool {
	n := doc
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return false
		}
		n = n.Content[0]
	}
	for _, key := range path {
		if n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Applies environment overrides.
func (c *Config) applyEnv(getenv func(string) string) {
	if getenv == nil {
		return
	}
	if v := strings.TrimSpace(getenv(EngineEnv)); v != "" {
		c.Engine = v
	}
	if v := strings.TrimSpace(getenv(BuildFlagsEnv)); v != "" {
		c.Build.Flags = strings.TrimSpace(c.Build.Flags + " " + v)
	}
}

// Checks the settings for values the engine would reject.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Engine == "" {
		fail("engine is required")
	}
	images := []struct {
		name string
		img  Image
	}{{"app", c.App}, {"test", c.Test.Image}, {"k8s", c.K8s}}
	for _, i := range images {
		if _, err := reference.ParseNormalizedNamed(i.img.Ref); err != nil {
			fail("%s.ref %q: %v", i.name, i.img.Ref, err)
		}
		if i.img.Dockerfile == "" {
			fail("%s.dockerfile is required", i.name)
		}
	}
	if c.App.Container == "" {
		fail("app.container is required")
	}
	if c.Ignore.Target == "" || c.Ignore.TestSource == "" || c.Ignore.Backup == "" {
		fail("ignore.target, ignore.test_source and ignore.backup are required")
	}

	seen := make(map[string]bool, len(c.Ports))
	for _, p := range c.Ports {
		if !validPort(p.Host) || !validPort(p.Container) {
			fail("port %q: %d:%d out of range", p.Name, p.Host, p.Container)
		}
		if seen[p.Name] {
			fail("port %q declared twice", p.Name)
		}
		seen[p.Name] = true
	}
	if c.Health.Port != "" && !seen[c.Health.Port] {
		fail("health.port %q is not in the port table", c.Health.Port)
	}

	if _, err := c.Resources.Linux(); err != nil {
		fail("resources: %v", err)
	}
	if _, err := c.BuildFlags(); err != nil {
		fail("build.flags: %v", err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfig, errors.Join(errs...))
	}
	return nil
}

// Returns the extra build flags split into words.
func (c *Config) BuildFlags() ([]string, error) {
	if strings.TrimSpace(c.Build.Flags) == "" {
		return nil, nil
	}
	return shellwords.Parse(c.Build.Flags)
}

// Returns the port table entry with the given name.
func (c *Config) Port(name string) (Port, bool) {
	for _, p := range c.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Whether the engine should be run through the host shell, given the
// platform default.
func (c *Config) UseShell(platformDefault bool) bool {
	if c.Shell != nil {
		return *c.Shell
	}
	return platformDefault
}

// Returns true for a usable TCP port number.
func validPort(p int) bool {
	return p > 0 && p <= 65535
}
