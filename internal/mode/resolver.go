package mode

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"net"
	"net/url"
	"slices"
	"strconv"

	"github.com/cherryrecorder/cherryctl/internal/project"
	"github.com/compose-spec/compose-go/v2/dotenv"
	"github.com/containerd/errdefs"
	"github.com/distribution/reference"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/spf13/afero"
)

// What the operator asked for.
type Request struct {
	Kind      Kind   // Target to build.
	Push      bool   // Push the image after building it.
	Namespace string // Registry namespace (Docker Hub username), may be empty.
}

// Maps requests to descriptors using fixed project settings.
type Resolver struct {
	cfg  *project.Config
	host project.Host
	fs   afero.Fs // Project directory, used to look for env files.
}

// Creates a resolver. fsys is rooted at the project directory.
func NewResolver(cfg *project.Config, host project.Host, fsys afero.Fs) *Resolver {
	return &Resolver{cfg: cfg, host: host, fs: fsys}
}

// Computes the descriptor for a request.
func (r *Resolver) Resolve(req Request) (*Descriptor, error) {
	switch req.Kind {
	case App:
		return r.app(req)
	case Test:
		return r.test(req)
	case K8s:
		return r.k8s(req)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, req.Kind)
	}
}

// Local application: detached container with the full run configuration.
func (r *Resolver) app(req Request) (*Descriptor, error) {
	img := r.cfg.App

	d, err := r.base(App, img.Ref, img.Dockerfile)
	if err != nil {
		return nil, err
	}
	d.ContainerName = img.Container
	d.EnvFile = r.findEnvFile()

	if d.RunFlags, err = r.appRunFlags(img.Container, d.EnvFile); err != nil {
		return nil, err
	}
	d.HealthURL = r.healthURL()

	if req.Push {
		d.Push = &Push{Source: d.ImageTag, Target: d.ImageTag}
		if req.Namespace != "" {
			target, err := namespaced(req.Namespace, d.ImageTag)
			if err != nil {
				return nil, err
			}
			d.Push.Target = target
			d.Push.Tag = true
		}
	}

	return d, nil
}

// Test suite: substituted ignore file, one-shot run with placeholder
// credentials. The credentials reach the container through the engine's
// environment, so their values stay off the command line. Never pushed.
func (r *Resolver) test(req Request) (*Descriptor, error) {
	img := r.cfg.Test

	d, err := r.base(Test, img.Ref, img.Dockerfile)
	if err != nil {
		return nil, err
	}

	d.Manifest = &ManifestSwap{
		Target: r.cfg.Ignore.Target,
		Source: r.cfg.Ignore.TestSource,
		Backup: r.cfg.Ignore.Backup,
	}

	d.RunFlags = []string{"--rm"}
	for _, k := range slices.Sorted(maps.Keys(img.Env)) {
		d.RunFlags = append(d.RunFlags, "-e", k)
	}
	if len(img.Env) > 0 {
		d.RunEnv = maps.Clone(img.Env)
	}

	if req.Push {
		slog.Info("push is not supported for the test target, skipping")
	}

	return d, nil
}

// Kubernetes image: built only, optionally under a registry namespace.
func (r *Resolver) k8s(req Request) (*Descriptor, error) {
	img := r.cfg.K8s

	ref := img.Ref
	if req.Namespace != "" {
		var err error
		if ref, err = namespaced(req.Namespace, ref); err != nil {
			return nil, err
		}
	}

	d, err := r.base(K8s, ref, img.Dockerfile)
	if err != nil {
		return nil, err
	}

	if req.Push {
		d.Push = &Push{Source: d.ImageTag}
		if req.Namespace != "" {
			d.Push.Target = d.ImageTag
		}
	}

	return d, nil
}

// Fills the fields shared by every target.
func (r *Resolver) base(kind Kind, ref, dockerfile string) (*Descriptor, error) {
	flags, err := r.buildFlags(ref)
	if err != nil {
		return nil, err
	}
	return &Descriptor{
		Kind:       kind,
		ImageTag:   ref,
		Dockerfile: dockerfile,
		Context:    r.cfg.Context,
		BuildFlags: flags,
	}, nil
}

// Returns the build flags: base-image pull, OCI labels, then operator
// extras.
func (r *Resolver) buildFlags(ref string) ([]string, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidReference, ref, errdefs.ErrInvalidArgument)
	}

	var flags []string
	if r.cfg.Build.Pull {
		flags = append(flags, "--pull")
	}

	label := func(key, value string) {
		if value != "" {
			flags = append(flags, "--label", key+"="+value)
		}
	}
	label(v1.AnnotationTitle, reference.FamiliarName(named))
	if tagged, ok := reference.TagNameOnly(named).(reference.Tagged); ok {
		label(v1.AnnotationRefName, tagged.Tag())
	}
	label(v1.AnnotationSource, r.cfg.Build.Source)
	label(v1.AnnotationRevision, r.cfg.Build.Revision)

	extra, err := r.cfg.BuildFlags()
	if err != nil {
		return nil, err
	}
	return append(flags, extra...), nil
}

// Returns the run flags of the application container.
func (r *Resolver) appRunFlags(name, envFile string) ([]string, error) {
	flags := []string{"-d", "--name", name}

	for _, p := range r.cfg.Ports {
		flags = append(flags, "-p", fmt.Sprintf("%d:%d", p.Host, p.Container))
	}

	res, err := r.cfg.Resources.Linux()
	if err != nil {
		return nil, err
	}
	if res.Memory != nil && res.Memory.Limit != nil {
		flags = append(flags, "--memory", strconv.FormatInt(*res.Memory.Limit, 10))
	}
	if res.CPU != nil && res.CPU.Quota != nil && res.CPU.Period != nil {
		cpus := float64(*res.CPU.Quota) / float64(*res.CPU.Period)
		flags = append(flags, "--cpus", strconv.FormatFloat(cpus, 'f', -1, 64))
	}

	logging := r.cfg.Logging.For(r.host)
	if logging.Driver != "" {
		flags = append(flags, "--log-driver", logging.Driver)
		for _, k := range slices.Sorted(maps.Keys(logging.Options)) {
			flags = append(flags, "--log-opt", k+"="+logging.Options[k])
		}
	}

	if envFile != "" {
		flags = append(flags, "--env-file", envFile)
	}

	return flags, nil
}

// Returns the first env-file candidate that exists as a regular file, or
// an empty string.
//
// A candidate that does not parse as a dotenv file is still used, with a
// warning; the engine has the final say on its format.
func (r *Resolver) findEnvFile() string {
	for _, path := range r.cfg.EnvFiles {
		info, err := r.fs.Stat(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				slog.Warn("could not inspect environment file", "path", path, "error", err)
			}
			continue
		}
		if info.IsDir() {
			continue
		}

		vars, err := parseEnvFile(r.fs, path)
		if err != nil {
			slog.Warn("environment file may be malformed", "path", path, "error", err)
		} else {
			slog.Info("found environment file", "path", path, "variables", len(vars))
		}
		return path
	}

	slog.Warn("no environment file found, container will run without one", "candidates", r.cfg.EnvFiles)
	return ""
}

// Parses a dotenv file without expanding variables from the host.
func parseEnvFile(fsys afero.Fs, path string) (map[string]string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dotenv.Parse(f)
}

// Returns the URL of the health endpoint on the published port, or an empty
// string if no health check is configured.
func (r *Resolver) healthURL() string {
	h := r.cfg.Health
	if h.Port == "" || h.Path == "" {
		return ""
	}
	p, ok := r.cfg.Port(h.Port)
	if !ok {
		return ""
	}
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(h.Host, strconv.Itoa(p.Host)),
		Path:   h.Path,
	}
	return u.String()
}

// Places a local image reference under a registry namespace
// ("name:tag" becomes "namespace/name:tag").
func namespaced(namespace, ref string) (string, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidReference, ref, errdefs.ErrInvalidArgument)
	}

	out := namespace + "/" + reference.FamiliarString(reference.TagNameOnly(named))
	if _, err := reference.ParseNormalizedNamed(out); err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidReference, out, errdefs.ErrInvalidArgument)
	}
	return out, nil
}
