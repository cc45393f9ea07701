package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/zjrosen/brainstorm/internal/log"
)

// stderrTail bounds how much stderr is kept for error reporting.
const stderrTail = 4096

// Config configures a ProcessInvoker.
type Config struct {
	Executable string
	BaseArgs   []string
	Prefix     string
	WorkDir    string
	Env        map[string]string

	// Timeout bounds one invocation. Zero means no bound.
	Timeout time.Duration

	// KnownPaths overrides DefaultKnownPaths for executable discovery.
	KnownPaths []string
}

// ProcessInvoker runs each command as a headless runner process:
//
//	<executable> <base args...> "/<prefix><name> <args...>"
//
// and reads the runner's stream-json stdout for its final result event.
type ProcessInvoker struct {
	cfg    Config
	finder *ExecutableFinder
}

// NewProcessInvoker creates an invoker for cfg.
func NewProcessInvoker(cfg Config) *ProcessInvoker {
	var opts []FinderOption
	if cfg.KnownPaths != nil {
		opts = append(opts, WithKnownPaths(cfg.KnownPaths...))
	}
	return &ProcessInvoker{
		cfg:    cfg,
		finder: NewExecutableFinder(cfg.Executable, opts...),
	}
}

// Invoke implements Invoker.
func (p *ProcessInvoker) Invoke(ctx context.Context, name string, args []string) <-chan Completion {
	ch := make(chan Completion, 1)
	log.SafeGo("invoke:"+name, func() {
		defer close(ch)
		ch <- p.run(ctx, name, args)
	})
	return ch
}

func (p *ProcessInvoker) run(ctx context.Context, name string, args []string) Completion {
	start := time.Now()
	c := Completion{OutputPath: outputPath(args), ExitCode: -1}

	execPath, err := p.finder.Find()
	if err != nil {
		c.Err = err
		return c
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	argv := buildArgs(p.cfg.BaseArgs, p.cfg.Prefix, name, args)
	cmd := exec.CommandContext(ctx, execPath, argv...)
	cmd.Dir = p.cfg.WorkDir
	cmd.Env = buildEnv(p.cfg.Env)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		c.Err = fmt.Errorf("creating stdout pipe: %w", err)
		return c
	}

	log.Debug(log.CatCmd, "starting command",
		"command", name, "executable", execPath, "workDir", p.cfg.WorkDir)

	if err := cmd.Start(); err != nil {
		c.Err = fmt.Errorf("starting %s: %w", name, err)
		return c
	}

	result, sawResult, scanErr := ScanResult(stdout)
	waitErr := cmd.Wait()

	c.Duration = time.Since(start)
	c.Stderr = tail(stderr.String(), stderrTail)
	if cmd.ProcessState != nil {
		c.ExitCode = cmd.ProcessState.ExitCode()
	}
	if sawResult {
		c.Result = result.Result
		c.IsError = result.IsError
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		c.Err = fmt.Errorf("%s timed out after %s", name, p.cfg.Timeout)
	case waitErr != nil:
		c.Err = fmt.Errorf("%s exited with code %d: %w", name, c.ExitCode, waitErr)
	case scanErr != nil:
		c.Err = fmt.Errorf("reading %s output: %w", name, scanErr)
	case c.IsError:
		msg := result.ErrorMessage
		if msg == "" {
			msg = result.Result
		}
		c.Err = fmt.Errorf("%s reported an error: %s", name, msg)
	}

	if c.Err != nil {
		log.ErrorErr(log.CatCmd, "command failed", c.Err,
			"command", name, "exitCode", c.ExitCode, "duration", c.Duration)
	} else {
		log.Debug(log.CatCmd, "command finished",
			"command", name, "duration", c.Duration, "sawResult", sawResult)
	}
	return c
}

func buildEnv(extra map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

var _ Invoker = (*ProcessInvoker)(nil)
