// Package command executes external programs on behalf of the deployment
// driver.
//
// Every call is synchronous: [Exec.Run] blocks until the child exits. The
// caller chooses per command whether a non-zero exit is a failure (Check)
// or an expected outcome of a best-effort call, such as stopping a
// container that may not exist. A missing executable is always a failure.
//
// Host shell interpretation is a single option resolved at startup. When
// enabled, the argument vector is joined into one command line and handed
// to "sh -c" (or "cmd /S /C" on Windows) instead of being executed directly.
//
// Example usage:
//
//	runner := command.New(command.DefaultShell())
//
//	res, err := runner.Run(ctx, command.Command{
//	    Args:  []string{"docker", "build", "-t", "app:latest", "."},
//	    Check: true,
//	})
//	if err != nil {
//	    return err
//	}
package command
