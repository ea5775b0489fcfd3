//go:build windows

package command

import (
	"context"
	"os/exec"
	"syscall"
)

// Runs args as one "cmd /S /C" command line.
//
// The command line is handed to CreateProcess verbatim. Letting os/exec
// escape it again would turn every inner quote into \", which cmd.exe
// passes through unchanged.
func shellCommand(ctx context.Context, args []string) *exec.Cmd {
	c := exec.CommandContext(ctx, "cmd")
	c.SysProcAttr = &syscall.SysProcAttr{
		CmdLine: `cmd /S /C "` + windowsCommandLine(args) + `"`,
	}
	return c
}
