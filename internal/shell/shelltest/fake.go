// Package shelltest provides a scripted shell.Runner for tests.
package shelltest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"botdrop/internal/shell"
)

// Response is a canned outcome for FakeRunner.
type Response struct {
	Result shell.Result
	Err    error
}

// FakeRunner replays canned responses keyed by a substring of the command.
// It records every command it was asked to run.
type FakeRunner struct {
	mu        sync.Mutex
	responses []fakeRule
	calls     []string
}

type fakeRule struct {
	match string
	resp  Response
}

// On registers resp for commands containing match. Later rules win.
func (f *FakeRunner) On(match string, resp Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, fakeRule{match: match, resp: resp})
	return f
}

// Calls returns the commands run so far.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeRunner) Run(ctx context.Context, command string) (shell.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, command)
	rules := append([]fakeRule(nil), f.responses...)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return shell.Result{ExitCode: -1}, err
	}
	for i := len(rules) - 1; i >= 0; i-- {
		if strings.Contains(command, rules[i].match) {
			return rules[i].resp.Result, rules[i].resp.Err
		}
	}
	return shell.Result{ExitCode: 127, Stderr: fmt.Sprintf("sh: command not found: %s", command)}, nil
}

// Ok is a successful Response with the given stdout.
func Ok(stdout string) Response {
	return Response{Result: shell.Result{Success: true, Stdout: stdout}}
}

// Exit is a failed Response with the given exit code.
func Exit(code int, stderr string) Response {
	return Response{Result: shell.Result{ExitCode: code, Stderr: stderr}}
}

var _ shell.Runner = (*FakeRunner)(nil)
