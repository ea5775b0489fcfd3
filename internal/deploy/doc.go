// Package deploy sequences a single cherryctl invocation.
//
// A [Driver] resolves the requested target into a descriptor and walks it
// through the engine: build, optional tag and push, replacement of the
// previous application container, run, and a post-start check. The test
// target builds against a substituted ignore file, which is restored before
// Run returns whatever the outcome.
//
// Example usage:
//
//	drv := deploy.New(deploy.Options{
//	    Config: cfg,
//	    Host:   project.DetectHost(os.Getenv),
//	    Engine: engine.New(command.New(false), cfg.Engine, dir),
//	})
//
//	if err := drv.Run(ctx, mode.Request{Kind: mode.Test}); err != nil {
//	    return err
//	}
package deploy
