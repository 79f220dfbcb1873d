package shell

import (
	"context"
	"strings"
	"sync"
)

// Call records a single invocation made through a Fake runner.
type Call struct {
	Name string
	Args []string
}

// String renders the call the way it would appear on a shell command line.
func (c Call) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Fake is a Runner for tests. It records every call and answers from a set
// of canned results matched by argv substring, falling back to a default.
type Fake struct {
	mu      sync.Mutex
	calls   []Call
	canned  map[string]Result
	errs    map[string]error
	Default Result
}

// NewFake returns a Fake whose default response is a successful empty result.
func NewFake() *Fake {
	return &Fake{
		canned: make(map[string]Result),
		errs:   make(map[string]error),
	}
}

// Respond registers a canned result for any call whose rendered command line
// contains match.
func (f *Fake) Respond(match string, res Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canned[match] = res
}

// Fail registers an invocation error for any call whose rendered command
// line contains match.
func (f *Fake) Fail(match string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[match] = err
}

// Run implements Runner.
func (f *Fake) Run(_ context.Context, name string, args ...string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := Call{Name: name, Args: args}
	f.calls = append(f.calls, call)

	line := call.String()
	for match, err := range f.errs {
		if strings.Contains(line, match) {
			return Result{}, err
		}
	}
	for match, res := range f.canned {
		if strings.Contains(line, match) {
			return res, nil
		}
	}
	return f.Default, nil
}

// Calls returns a copy of all recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallLines returns the recorded invocations rendered as command lines.
func (f *Fake) CallLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Invoked reports whether any recorded call contains match.
func (f *Fake) Invoked(match string) bool {
	for _, line := range f.CallLines() {
		if strings.Contains(line, match) {
			return true
		}
	}
	return false
}
