package deploy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/cherryrecorder/cherryctl/internal/engine"
	"github.com/cherryrecorder/cherryctl/internal/health"
	"github.com/cherryrecorder/cherryctl/internal/manifest"
	"github.com/cherryrecorder/cherryctl/internal/mode"
	"github.com/cherryrecorder/cherryctl/internal/project"
	"github.com/spf13/afero"
)

// Dependencies of a [Driver].
type Options struct {
	Config *project.Config // Project settings. Required.
	Host   project.Host    // Facts about the machine.
	Fs     afero.Fs        // Project directory. Nil uses the OS filesystem rooted at the working directory.
	Engine *engine.Engine  // Container engine. Required.
	Prober *health.Prober  // Health prober. Nil builds one from the configured timeout.
	Out    io.Writer       // Destination of the final summary. Nil uses stdout.
}

// Runs one deployment invocation from start to finish.
type Driver struct {
	cfg      *project.Config
	fs       afero.Fs
	resolver *mode.Resolver
	engine   *engine.Engine
	prober   *health.Prober
	out      io.Writer
}

// Creates a driver.
func New(opts Options) *Driver {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	prober := opts.Prober
	if prober == nil {
		prober = health.NewProber(opts.Config.Health.Timeout)
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Driver{
		cfg:      opts.Config,
		fs:       fsys,
		resolver: mode.NewResolver(opts.Config, opts.Host, fsys),
		engine:   opts.Engine,
		prober:   prober,
		out:      out,
	}
}

// Resolves the request and carries it out.
//
// For the test target the ignore file is substituted before the build and
// restored on every return path; a failed restoration is logged and does
// not change the result. Build, tag, push and run failures abort the
// invocation. For the app target the container is checked once after start;
// a failed check is reported after the summary and makes the invocation
// fail.
func (d *Driver) Run(ctx context.Context, req mode.Request) error {
	desc, err := d.resolver.Resolve(req)
	if err != nil {
		return err
	}

	slog.Info("deploying", "target", desc.Kind, "image", desc.ImageTag)

	if desc.Manifest != nil {
		tx, err := manifest.Begin(manifest.Options{
			Fs:     d.fs,
			Target: desc.Manifest.Target,
			Source: desc.Manifest.Source,
			Backup: desc.Manifest.Backup,
		})
		if err != nil {
			return err
		}
		defer restore(tx)
	}

	if err := d.engine.Build(ctx, engine.BuildSpec{
		Tag:        desc.ImageTag,
		Dockerfile: desc.Dockerfile,
		Context:    desc.Context,
		Flags:      desc.BuildFlags,
	}); err != nil {
		return err
	}

	if desc.Push != nil {
		if err := d.push(ctx, desc.Push); err != nil {
			return err
		}
	}

	if desc.ContainerName != "" {
		d.replace(ctx, desc.ContainerName)
	}

	if desc.Runs() {
		if err := d.engine.Run(ctx, desc.ImageTag, desc.RunFlags, desc.RunEnv); err != nil {
			return err
		}
	}

	var checkErr error
	if desc.ContainerName != "" {
		if checkErr = d.verify(ctx, desc); checkErr != nil {
			slog.Error("container check failed", "container", desc.ContainerName, "error", checkErr)
		}
	}

	d.summarize(desc)
	return checkErr
}

// Tags and pushes the built image.
func (d *Driver) push(ctx context.Context, p *mode.Push) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Tag {
		if err := d.engine.Tag(ctx, p.Source, p.Target); err != nil {
			return err
		}
	}
	if err := d.engine.Push(ctx, p.Target); err != nil {
		return err
	}
	slog.Info("pushed image", "ref", p.Target)
	return nil
}

// Stops and removes a previous container with the same name. Failures are
// logged only.
func (d *Driver) replace(ctx context.Context, name string) {
	slog.Info("removing previous container, if any", "container", name)

	if err := d.engine.Stop(ctx, name); err != nil {
		slog.Warn("could not stop previous container", "container", name, "error", err)
	}
	if err := d.engine.Remove(ctx, name); err != nil {
		slog.Warn("could not remove previous container", "container", name, "error", err)
	}
}

// Checks that the container is running and, when configured, that its
// health endpoint answers.
func (d *Driver) verify(ctx context.Context, desc *mode.Descriptor) error {
	running, err := d.engine.Running(ctx, desc.ContainerName)
	if err != nil {
		return err
	}
	if !running {
		return fmt.Errorf("%w: %s", ErrNotRunning, desc.ContainerName)
	}

	if desc.HealthURL == "" {
		return nil
	}
	if err := d.prober.ProbeAfter(ctx, desc.HealthURL, d.cfg.Health.Delay); err != nil {
		return err
	}

	slog.Info("health check passed", "url", desc.HealthURL)
	return nil
}

// Prints what was done and how to follow up.
func (d *Driver) summarize(desc *mode.Descriptor) {
	bin := d.engine.Binary()

	switch desc.Kind {
	case mode.App:
		fmt.Fprint(d.out, heredoc.Docf(`

			Container %s started from %s.
			%s
			  Logs: %s logs -f %s
			  Stop: %s stop %s
		`,
			desc.ContainerName, desc.ImageTag,
			d.endpoints(),
			bin, desc.ContainerName,
			bin, desc.ContainerName,
		))

	case mode.Test:
		fmt.Fprintf(d.out, "\nTests completed successfully (%s).\n", desc.ImageTag)

	case mode.K8s:
		fmt.Fprint(d.out, heredoc.Docf(`

			Kubernetes image built: %s
			To deploy it:
			  1. Set the deployment image to %s
			  2. kubectl apply -f <deployment.yaml>
		`, desc.ImageTag, d.pushedOr(desc)))
	}
}

// Returns one line per published port.
func (d *Driver) endpoints() string {
	var b strings.Builder
	for i, p := range d.cfg.Ports {
		if i > 0 {
			b.WriteByte('\n')
		}
		addr := fmt.Sprintf("localhost:%d", p.Host)
		if p.Name == d.cfg.Health.Port {
			addr = "http://" + addr
		}
		fmt.Fprintf(&b, "  %s: %s", p.Name, addr)
	}
	return b.String()
}

// Returns the pushed reference, or the local one if nothing was pushed.
func (d *Driver) pushedOr(desc *mode.Descriptor) string {
	if desc.Push != nil && desc.Push.Target != "" {
		return desc.Push.Target
	}
	return desc.ImageTag
}

// Finishes an ignore-file transaction, logging a failure.
func restore(tx *manifest.Transaction) {
	if err := tx.Restore(); err != nil {
		slog.Warn("could not restore ignore file, run 'cherryctl recover' or restore it by hand", "error", err)
	}
}
