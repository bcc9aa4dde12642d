package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/local-mcps/devtools-mcp/config"
	"github.com/local-mcps/devtools-mcp/internal/common"
)

// waitDelay bounds how long Run keeps draining output after the shell has
// exited and its process group has been killed.
const waitDelay = 2 * time.Second

type Executor struct {
	timeout        time.Duration
	maxOutputBytes int
}

func NewExecutor(limits config.LimitsConfig) *Executor {
	return &Executor{
		timeout:        limits.CommandTimeout(),
		maxOutputBytes: limits.MaxOutputBytes,
	}
}

type CommandResult struct {
	Command         string `json:"command"`
	WorkingDir      string `json:"working_dir"`
	ExitCode        int    `json:"exit_code"`
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	Success         bool   `json:"success"`
	DurationMs      int64  `json:"duration_ms"`
	StdoutTruncated bool   `json:"stdout_truncated"`
	StderrTruncated bool   `json:"stderr_truncated"`
}

// Run executes command through the platform shell in dir. A non-zero exit
// status is reported in the result. Errors are reserved for timeouts,
// cancellation and failures to start the shell. Anything the command left
// running in its process group is killed before Run returns.
func (e *Executor) Run(ctx context.Context, command, dir string) (*CommandResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	shell, args := shellInvocation(command)
	cmd := exec.CommandContext(runCtx, shell, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	configureProcessGroup(cmd)

	stdout, err := newOutputPipe(e.maxOutputBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: creating stdout pipe: %v", common.ErrExecutionFailure, err)
	}
	stderr, err := newOutputPipe(e.maxOutputBytes)
	if err != nil {
		stdout.abort()
		return nil, fmt.Errorf("%w: creating stderr pipe: %v", common.ErrExecutionFailure, err)
	}
	cmd.Stdout = stdout.w
	cmd.Stderr = stderr.w

	startTime := time.Now()
	if err := cmd.Start(); err != nil {
		stdout.abort()
		stderr.abort()
		return nil, fmt.Errorf("%w: cannot start %s: %v", common.ErrExecutionFailure, shell, err)
	}
	stdout.start()
	stderr.start()

	err = cmd.Wait()
	killProcessGroup(cmd)
	deadline := time.Now().Add(waitDelay)
	stdout.drain(deadline)
	stderr.drain(deadline)
	duration := time.Since(startTime)

	if runCtx.Err() != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: command cancelled: %v", common.ErrExecutionFailure, ctx.Err())
		}
		return nil, fmt.Errorf("%w: command timed out after %s", common.ErrLimitExceeded, e.timeout)
	}

	result := &CommandResult{
		Command:         command,
		WorkingDir:      dir,
		Stdout:          stdout.buf.String(),
		Stderr:          stderr.buf.String(),
		DurationMs:      duration.Milliseconds(),
		StdoutTruncated: stdout.buf.Truncated(),
		StderrTruncated: stderr.buf.Truncated(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = cmd.ProcessState.ExitCode()
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("%w: waiting for %s: %v", common.ErrExecutionFailure, shell, err)
	}

	result.Success = result.ExitCode == 0
	return result, nil
}

// outputPipe hands the child a real file descriptor, so Wait returns as
// soon as the shell exits even if a background process still holds the
// write end. The read side is copied into a cappedBuffer.
type outputPipe struct {
	r, w *os.File
	buf  *cappedBuffer
	done chan struct{}
}

func newOutputPipe(limit int) (*outputPipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	return &outputPipe{r: r, w: w, buf: &cappedBuffer{limit: limit}, done: make(chan struct{})}, nil
}

// start closes the parent's copy of the write end and begins copying.
func (p *outputPipe) start() {
	p.w.Close()
	go func() {
		defer close(p.done)
		io.Copy(p.buf, p.r)
	}()
}

// drain waits for EOF until deadline, then closes the read end.
func (p *outputPipe) drain(deadline time.Time) {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-p.done:
	case <-timer.C:
	}
	p.r.Close()
}

func (p *outputPipe) abort() {
	p.r.Close()
	p.w.Close()
}

// cappedBuffer keeps the first limit bytes written and drops the rest.
// It never fails a write, so the child is not stalled by a full pipe.
type cappedBuffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	remaining := b.limit - b.buf.Len()
	if len(p) > remaining {
		if remaining > 0 {
			b.buf.Write(p[:remaining])
		}
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *cappedBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}
