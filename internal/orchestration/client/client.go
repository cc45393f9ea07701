// Package client invokes phase commands as external processes and reports
// their completion.
package client

import (
	"context"
	"errors"
	"time"
)

// ErrExecutableNotFound is returned when the command runner cannot be located.
var ErrExecutableNotFound = errors.New("executable not found")

// Invoker runs one named command with ordered arguments. The returned channel
// receives exactly one Completion and is then closed.
type Invoker interface {
	Invoke(ctx context.Context, name string, args []string) <-chan Completion
}

// Completion is the invocation's own report of how a command went. Callers
// must not treat Err == nil as proof that the command produced its output.
type Completion struct {
	// Err is set when the process could not start, exited non-zero, or
	// reported an error result.
	Err error

	// OutputPath is the artifact location the command was asked to write.
	OutputPath string

	ExitCode int
	Stderr   string

	// Result and IsError come from the final stream-json result event.
	Result  string
	IsError bool

	Duration time.Duration
}

// OK reports whether the invocation itself claimed success.
func (c Completion) OK() bool {
	return c.Err == nil && !c.IsError
}

// Done returns a closed channel carrying c. Useful for invokers that complete
// synchronously.
func Done(c Completion) <-chan Completion {
	ch := make(chan Completion, 1)
	ch <- c
	close(ch)
	return ch
}
