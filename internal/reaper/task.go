package reaper

import (
	"context"
	"strings"
	"sync/atomic"
)

// DefaultOutputBuffer is the output channel capacity used when none is set.
const DefaultOutputBuffer = 256

// Outcome is what a finished subprocess left behind.
type Outcome struct {
	ExitCode int
	// Stderr holds every stderr line, each terminated by a newline.
	Stderr string
	// Dropped counts lines not delivered on the output channel.
	Dropped int64
}

// Task is a running conversion.
type Task struct {
	lines   chan Line
	done    chan struct{}
	cancel  context.CancelFunc
	dropped atomic.Int64

	outcome Outcome
	err     error
}

// StartTask runs binary with args on exec in the background. It returns at
// once; output arrives on Lines and the outcome on Wait.
func StartTask(ctx context.Context, exec Executor, binary string, args []string, buffer int) *Task {
	if buffer <= 0 {
		buffer = DefaultOutputBuffer
	}
	runCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		lines:  make(chan Line, buffer),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go t.run(runCtx, exec, binary, args)
	return t
}

func (t *Task) run(ctx context.Context, exec Executor, binary string, args []string) {
	defer close(t.done)
	defer close(t.lines)
	defer t.cancel()

	var stderr strings.Builder
	code, err := exec.Run(ctx, binary, args, func(line Line) {
		if line.Stream == Stderr {
			stderr.WriteString(line.Text)
			stderr.WriteByte('\n')
		}
		select {
		case t.lines <- line:
		default:
			t.dropped.Add(1)
		}
	})
	t.outcome = Outcome{ExitCode: code, Stderr: stderr.String(), Dropped: t.dropped.Load()}
	t.err = err
}

// Lines delivers output as it is produced. The channel is closed when the
// subprocess exits.
func (t *Task) Lines() <-chan Line {
	return t.lines
}

// Done is closed once the outcome is available.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the subprocess exits. err is set when the process could
// not be started or observed.
func (t *Task) Wait() (Outcome, error) {
	<-t.done
	return t.outcome, t.err
}

// Cancel kills the subprocess if it is still running.
func (t *Task) Cancel() {
	t.cancel()
}
