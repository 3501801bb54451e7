package install

import "fmt"

// SpawnError reports an install command that could not be started: the
// shell or working directory is missing, or the shell could not find the
// program. A shell script exiting 127 counts as not found wherever in the
// script that status came from, including a nested step of a later
// command such as make install. Program is always the script's first word.
// It is the only install failure that aborts a run.
type SpawnError struct {
	Program string
	Dir     string
	Err     error
}

func (e *SpawnError) Error() string {
	if e.Program == "" {
		return fmt.Sprintf("start install command in %s: %v", e.Dir, e.Err)
	}
	return fmt.Sprintf("start %s in %s: %v", e.Program, e.Dir, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExecutionError reports an install command that ran and exited nonzero.
type ExecutionError struct {
	Code   int
	Stderr string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("install command exited with code %d: %v", e.Code, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
