package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cherryrecorder/cherryctl/internal/command"
)

// Go template passed to inspect to read the running state of a container.
const runningFormat = "{{.State.Running}}"

// An image build.
type BuildSpec struct {
	Tag        string   // Reference the image is tagged as.
	Dockerfile string   // Dockerfile, relative to the working directory.
	Context    string   // Build context, relative to the working directory.
	Flags      []string // Extra flags placed before the tag.
}

// Issues engine commands through a runner.
type Engine struct {
	runner command.Runner
	binary string // Engine executable (docker, podman).
	dir    string // Working directory of every command.
}

// Creates an engine that runs binary in dir.
func New(runner command.Runner, binary, dir string) *Engine {
	return &Engine{runner: runner, binary: binary, dir: dir}
}

// Returns the engine executable.
func (e *Engine) Binary() string {
	return e.binary
}

// Builds an image.
func (e *Engine) Build(ctx context.Context, spec BuildSpec) error {
	args := append([]string{"build"}, spec.Flags...)
	args = append(args, "-t", spec.Tag, "-f", spec.Dockerfile, spec.Context)

	slog.Info("building image", "tag", spec.Tag, "dockerfile", spec.Dockerfile)

	if err := e.check(ctx, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrBuild, err)
	}
	return nil
}

// Adds the reference target to the image source.
func (e *Engine) Tag(ctx context.Context, source, target string) error {
	if err := e.check(ctx, "tag", source, target); err != nil {
		return fmt.Errorf("%w: %w", ErrTag, err)
	}
	return nil
}

// Pushes an image to its registry.
func (e *Engine) Push(ctx context.Context, ref string) error {
	slog.Info("pushing image", "ref", ref)

	if err := e.check(ctx, "push", ref); err != nil {
		return fmt.Errorf("%w: %w", ErrPush, err)
	}
	return nil
}

// Runs a container from image.
//
// env is added to the environment of the engine process, where "-e KEY"
// flags pick values up by name. Blocks until the engine returns:
// immediately for detached containers, at container exit otherwise.
func (e *Engine) Run(ctx context.Context, image string, flags []string, env map[string]string) error {
	args := append([]string{"run"}, flags...)
	args = append(args, image)

	_, err := e.runner.Run(ctx, command.Command{
		Args:  e.argv(args...),
		Dir:   e.dir,
		Env:   env,
		Check: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRun, err)
	}
	return nil
}

// Stops a container. A missing container is not an error.
func (e *Engine) Stop(ctx context.Context, name string) error {
	return e.bestEffort(ctx, "stop", name)
}

// Removes a container. A missing container is not an error.
func (e *Engine) Remove(ctx context.Context, name string) error {
	return e.bestEffort(ctx, "rm", name)
}

// Returns whether the named container is running.
func (e *Engine) Running(ctx context.Context, name string) (bool, error) {
	var out bytes.Buffer
	_, err := e.runner.Run(ctx, command.Command{
		Args:   e.argv("inspect", "-f", runningFormat, name),
		Dir:    e.dir,
		Check:  true,
		Stdout: &out,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInspect, err)
	}

	running, err := strconv.ParseBool(strings.TrimSpace(out.String()))
	if err != nil {
		return false, fmt.Errorf("%w: unexpected output %q", ErrInspect, strings.TrimSpace(out.String()))
	}
	return running, nil
}

// Runs an engine command that must succeed.
func (e *Engine) check(ctx context.Context, args ...string) error {
	_, err := e.runner.Run(ctx, command.Command{
		Args:  e.argv(args...),
		Dir:   e.dir,
		Check: true,
	})
	return err
}

// Runs an engine command whose exit status is ignored. Engine complaints
// about missing objects are discarded.
func (e *Engine) bestEffort(ctx context.Context, args ...string) error {
	_, err := e.runner.Run(ctx, command.Command{
		Args:   e.argv(args...),
		Dir:    e.dir,
		Check:  false,
		Stderr: io.Discard,
	})
	return err
}

// Prepends the engine executable.
func (e *Engine) argv(args ...string) []string {
	return append([]string{e.binary}, args...)
}
