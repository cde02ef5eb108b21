// Package exec runs the external programs the daemon supervises.
//
// It wraps os/exec behind small interfaces so the lifecycle engine can be
// tested without touching the system: Launcher runs a program and reports
// failure-to-launch distinctly from a non-zero exit, and Exister checks
// that a required program is installed.
package exec

import (
	"context"
	"errors"
	"os"
	osexec "os/exec"
	"strings"

	neterrors "github.com/netcfgd/netcfgd/internal/errors"
	"github.com/netcfgd/netcfgd/internal/log"
)

// Launcher runs external programs to completion.
type Launcher interface {
	// Run executes a program and waits for it to exit. A program that
	// could not be started yields a LAUNCH_FAILURE error; one that ran
	// but exited unsuccessfully yields a NONZERO_EXIT error.
	Run(ctx context.Context, program string, args ...string) error

	// RunOutput behaves like Run but also returns the program's combined
	// standard output and standard error.
	RunOutput(ctx context.Context, program string, args ...string) (string, error)
}

// Exister reports whether a program exists at a path.
type Exister interface {
	Exists(path string) bool
}

// SystemLauncher runs programs on the host via os/exec.
type SystemLauncher struct{}

var _ Launcher = (*SystemLauncher)(nil)

// Run executes the program and waits for it to exit.
func (l *SystemLauncher) Run(ctx context.Context, program string, args ...string) error {
	_, err := l.RunOutput(ctx, program, args...)
	return err
}

// RunOutput executes the program and returns its combined output.
func (l *SystemLauncher) RunOutput(ctx context.Context, program string, args ...string) (string, error) {
	cmd := osexec.CommandContext(ctx, program, args...)
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))

	if err == nil {
		log.Debugf("Command succeeded: %s %s", program, strings.Join(args, " "))
		return output, nil
	}

	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		return output, neterrors.NewNonZeroExitError(program, exitErr.ExitCode(), err)
	}
	return output, neterrors.NewLaunchFailureError(program, err)
}

// SystemExister checks program presence via the filesystem.
type SystemExister struct{}

var _ Exister = (*SystemExister)(nil)

// Exists returns true if path names an existing regular file or directory.
func (e *SystemExister) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
