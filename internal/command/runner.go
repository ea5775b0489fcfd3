package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const (

	// Exit status reported by POSIX shells when the command cannot be found.
	shNotFound = 127

	// Exit status reported by cmd.exe when the command cannot be found.
	cmdNotFound = 9009
)

// A single external invocation.
type Command struct {
	Args   []string          // Program followed by its arguments.
	Dir    string            // Working directory. Empty uses the current one.
	Env    map[string]string // Overlay merged on top of the inherited environment.
	Check  bool              // Whether a non-zero exit is reported as a failure.
	Stdout io.Writer         // Overrides the runner's stdout for this command.
	Stderr io.Writer         // Overrides the runner's stderr for this command.
}

// Outcome of a single external invocation.
type Result struct {
	ExitCode  int  // Exit code of the process, or -1 if it never started.
	Succeeded bool // Whether the caller should treat the invocation as successful.
}

// Executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Runs commands as child processes of cherryctl.
type Exec struct {
	shell  bool      // Whether commands are interpreted by the host shell.
	stdout io.Writer // Default destination for child stdout.
	stderr io.Writer // Default destination for child stderr.
}

// Returns whether commands should go through the host shell by default.
// Only Windows needs it, to resolve engine shims such as docker.cmd.
func DefaultShell() bool {
	return runtime.GOOS == "windows"
}

// Creates a runner that streams child output to the process stdout and
// stderr.
//
// When shell is true every command is joined into one line and executed via
// the host shell.
func New(shell bool) *Exec {
	return &Exec{
		shell:  shell,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// Replaces the default output streams.
func (e *Exec) WithOutput(stdout, stderr io.Writer) *Exec {
	cp := *e
	cp.stdout = stdout
	cp.stderr = stderr
	return &cp
}

// Runs the command and blocks until it exits.
//
// A non-zero exit with Check set returns [ErrCommandFailed] and an
// unsuccessful result. Without Check the exit is logged and the result is
// successful. A missing executable always returns [ErrExecutableNotFound].
// A child ended by cancellation of ctx is a failure regardless of Check.
func (e *Exec) Run(ctx context.Context, cmd Command) (Result, error) {
	if len(cmd.Args) == 0 {
		return Result{ExitCode: -1}, ErrEmptyCommand
	}

	name := cmd.Args[0]
	slog.Info("running command", "command", strings.Join(cmd.Args, " "))

	c := e.command(ctx, cmd.Args)
	c.Dir = cmd.Dir
	c.Stdout = pick(cmd.Stdout, e.stdout)
	c.Stderr = pick(cmd.Stderr, e.stderr)
	if len(cmd.Env) > 0 {
		c.Env = overlayEnv(os.Environ(), cmd.Env)
	}

	err := c.Run()
	if err == nil {
		slog.Debug("command succeeded", "command", name)
		return Result{ExitCode: 0, Succeeded: true}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%w: %s: %w", ErrCommandFailed, name, ctxErr)
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return Result{ExitCode: -1}, fmt.Errorf("%w: %s", ErrExecutableNotFound, name)
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return Result{ExitCode: -1}, fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}

	code := exitErr.ExitCode()
	if e.shell && shellNotFound(code) {
		return Result{ExitCode: code}, fmt.Errorf("%w: %s", ErrExecutableNotFound, name)
	}

	if !cmd.Check {
		slog.Info("command exited with non-zero status, ignored", "command", name, "code", code)
		return Result{ExitCode: code, Succeeded: true}, nil
	}

	return Result{ExitCode: code}, fmt.Errorf("%w: %s exited with code %d", ErrCommandFailed, name, code)
}

// Builds the child process, either direct or through the shell.
func (e *Exec) command(ctx context.Context, args []string) *exec.Cmd {
	if !e.shell {
		return exec.CommandContext(ctx, args[0], args[1:]...)
	}
	return shellCommand(ctx, args)
}

// Whether an exit code is the shell reporting an unknown command.
func shellNotFound(code int) bool {
	if runtime.GOOS == "windows" {
		return code == cmdNotFound
	}
	return code == shNotFound
}

// Returns w, or fallback when w is nil.
func pick(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
