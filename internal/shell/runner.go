// Package shell runs single shell commands on behalf of the resolvers.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Result is the outcome of one command. Success is true exactly when the
// command exited with status zero.
type Result struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes a shell command line. A non-zero exit is reported through
// Result; the error is reserved for commands that could not be run at all
// (missing shell, cancelled context).
type Runner interface {
	Run(ctx context.Context, command string) (Result, error)
}

const waitDelay = 500 * time.Millisecond

// ShellRunner runs commands through "sh -c".
type ShellRunner struct {
	// Shell defaults to "sh".
	Shell string
	Dir   string
	Env   []string
	// Timeout bounds each command when the caller's context has no deadline.
	Timeout time.Duration
	// Stderr receives a live copy of the command's stderr when set.
	Stderr io.Writer
	Log    zerolog.Logger
}

func (r ShellRunner) Run(ctx context.Context, command string) (Result, error) {
	if r.Timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.Timeout)
			defer cancel()
		}
	}

	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	// Children of the shell may keep the output pipes open after a kill.
	cmd.WaitDelay = waitDelay
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	stderrWriter := io.Writer(&stderrBuf)
	if r.Stderr != nil {
		stderrWriter = io.MultiWriter(&stderrBuf, r.Stderr)
	}
	cmd.Stderr = stderrWriter

	start := time.Now()
	err := cmd.Run()
	res := Result{Stdout: stdoutBuf.String(), Stderr: stderrBuf.String()}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			res.ExitCode = -1
			return res, ctxErr
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			res.ExitCode = -1
			return res, err
		}
		res.ExitCode = exitErr.ExitCode()
	}
	res.Success = res.ExitCode == 0

	r.Log.Debug().
		Int("exit_code", res.ExitCode).
		Dur("elapsed", time.Since(start)).
		Msg("command finished")
	return res, nil
}

// RunAsync runs command on a new goroutine and calls done exactly once with
// the outcome.
func RunAsync(ctx context.Context, r Runner, command string, done func(Result, error)) {
	var once sync.Once
	deliver := func(res Result, err error) {
		once.Do(func() { done(res, err) })
	}
	go func() {
		defer func() {
			if p := recover(); p != nil {
				deliver(Result{ExitCode: -1}, errors.New("command runner panicked"))
			}
		}()
		deliver(r.Run(ctx, command))
	}()
}

var _ Runner = ShellRunner{}
