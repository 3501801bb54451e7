package install

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"runtime"

	"github.com/google/shlex"
)

// exitCommandNotFound is the POSIX shell status for an unknown program.
const exitCommandNotFound = 127

// Command is one install script to run.
type Command struct {
	Script string
	Dir    string
	// Shell runs Script through the system shell. Otherwise Script is
	// split into arguments and the first one is executed directly.
	Shell  bool
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Executor runs install commands. Run returns nil on success, a
// *SpawnError when the command could not be started and an
// *ExecutionError when it exited nonzero.
type Executor interface {
	Run(ctx context.Context, cmd Command) error
}

// ShellExecutor runs commands with os/exec.
type ShellExecutor struct {
	Shell     string
	ShellFlag string
}

// NewShellExecutor returns an executor using /bin/sh -c, or cmd /C on
// Windows.
func NewShellExecutor() *ShellExecutor {
	if runtime.GOOS == "windows" {
		return &ShellExecutor{Shell: "cmd", ShellFlag: "/C"}
	}
	return &ShellExecutor{Shell: "/bin/sh", ShellFlag: "-c"}
}

func (e *ShellExecutor) Run(ctx context.Context, c Command) error {
	program := programName(c.Script)

	var cmd *exec.Cmd
	if c.Shell {
		cmd = exec.CommandContext(ctx, e.Shell, e.ShellFlag, c.Script)
	} else {
		args, err := shlex.Split(c.Script)
		if err != nil {
			return &SpawnError{Program: program, Dir: c.Dir, Err: err}
		}
		if len(args) == 0 {
			return &SpawnError{Dir: c.Dir, Err: errors.New("empty command")}
		}
		cmd = exec.CommandContext(ctx, args[0], args[1:]...)
	}

	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Start(); err != nil {
		return &SpawnError{Program: program, Dir: c.Dir, Err: err}
	}

	err := cmd.Wait()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if c.Shell && code == exitCommandNotFound {
			return &SpawnError{Program: program, Dir: c.Dir, Err: err}
		}
		return &ExecutionError{Code: code, Err: err}
	}
	return &ExecutionError{Code: -1, Err: err}
}

// programName is the first word of a script, when it splits cleanly.
func programName(script string) string {
	args, err := shlex.Split(script)
	if err != nil || len(args) == 0 {
		return ""
	}
	return args[0]
}
