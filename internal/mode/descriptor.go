package mode

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// Resolved parameters of one invocation.
//
// Paths are relative to the project directory. A descriptor is built once
// by [Resolver.Resolve] and must not be modified afterwards.
type Descriptor struct {
	Kind          Kind              // Requested target.
	ImageTag      string            // Reference the image is built as.
	Dockerfile    string            // Dockerfile used for the build.
	Context       string            // Build context directory.
	BuildFlags    []string          // Engine build flags, before tag, file and context.
	RunFlags      []string          // Engine run flags, before the image. Nil when nothing is run.
	RunEnv        map[string]string // Values of the variables forwarded by name with "-e KEY".
	ContainerName string            // Name of the detached container (app only).
	EnvFile       string            // Env file passed to the container, empty if none was found.
	HealthURL     string            // Endpoint probed after start (app only).
	Manifest      *ManifestSwap     // Ignore-file substitution around the build (test only).
	Push          *Push             // Registry push after the build. Nil when not requested.
}

// Whether the image is started locally after the build.
func (d *Descriptor) Runs() bool {
	return d.RunFlags != nil
}

// Ignore-file substitution performed around a build.
type ManifestSwap struct {
	Target string // Ignore file read by the engine.
	Source string // Mode-specific replacement.
	Backup string // Slot for the original while substituted.
}

// Registry push of a built image.
type Push struct {
	Source string // Local reference that was built.
	Target string // Reference pushed. Empty when a required namespace is missing.
	Tag    bool   // Whether Source must be tagged as Target before pushing.
}

// Returns an error if the push cannot be performed.
func (p *Push) Validate() error {
	if p.Target == "" {
		return fmt.Errorf("%w (--dockerhub-username): %w", ErrMissingNamespace, errdefs.ErrInvalidArgument)
	}
	return nil
}
