//go:build !windows

package command

import (
	"context"
	"os/exec"

	"github.com/kballard/go-shellquote"
)

// Runs args as one "sh -c" command line.
func shellCommand(ctx context.Context, args []string) *exec.Cmd {
	return exec.CommandContext(ctx, "sh", "-c", shellquote.Join(args...))
}
