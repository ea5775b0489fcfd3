package cli

import (
	"context"
	"os"

	"github.com/cherryrecorder/cherryctl/internal/command"
	"github.com/cherryrecorder/cherryctl/internal/deploy"
	"github.com/cherryrecorder/cherryctl/internal/engine"
	"github.com/cherryrecorder/cherryctl/internal/mode"
	"github.com/cherryrecorder/cherryctl/internal/project"
)

// Represents the 'cherryctl deploy' command, which also runs when no
// command is given.
type DeployCmd struct {
	Target            string `short:"t" enum:"app,test,k8s" default:"app" help:"Target to build: ${enum}." placeholder:"TARGET"`
	Push              bool   `help:"Push the built image to the registry (app and k8s; requires a prior login)."`
	DockerhubUsername string `name:"dockerhub-username" help:"Registry namespace to tag and push under. Required to push the k8s image." placeholder:"NAME"`
}

// Executes the deploy command.
func (c *DeployCmd) Run(ctx context.Context) error {
	kind, err := mode.ParseKind(c.Target)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(RootCmd.Dir, RootCmd.Config, os.Getenv)
	if err != nil {
		return err
	}

	runner := command.New(ws.cfg.UseShell(command.DefaultShell()))

	drv := deploy.New(deploy.Options{
		Config: ws.cfg,
		Host:   project.DetectHost(os.Getenv),
		Fs:     ws.fs,
		Engine: engine.New(runner, ws.cfg.Engine, ws.dir),
	})

	return drv.Run(ctx, mode.Request{
		Kind:      kind,
		Push:      c.Push,
		Namespace: c.DockerhubUsername,
	})
}
