package reaper

import (
	"context"
	"errors"
	"strings"
)

// Default command-line flags.
const (
	DefaultFreshInstanceFlag = "-newinst"
	DefaultBatchFlag         = "-batchconvert"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithFlags overrides the fresh-instance and batch-convert flags. An empty
// fresh-instance flag omits it from the command line.
func WithFlags(freshInstance, batch string) Option {
	return func(c *Client) {
		c.freshFlag = strings.TrimSpace(freshInstance)
		if batch = strings.TrimSpace(batch); batch != "" {
			c.batchFlag = batch
		}
	}
}

// WithOutputBuffer sets the capacity of each task's output channel.
func WithOutputBuffer(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// Client wraps REAPER batch-convert invocations.
type Client struct {
	binary    string
	freshFlag string
	batchFlag string
	buffer    int
	exec      Executor
}

// New constructs a REAPER client for the executable at binary.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("reaper executable required")
	}
	client := &Client{
		binary:    binary,
		freshFlag: DefaultFreshInstanceFlag,
		batchFlag: DefaultBatchFlag,
		buffer:    DefaultOutputBuffer,
		exec:      commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the executable path.
func (c *Client) Binary() string {
	return c.binary
}

// Args returns the command line used to convert descriptorPath.
func (c *Client) Args(descriptorPath string) []string {
	args := make([]string, 0, 3)
	if c.freshFlag != "" {
		args = append(args, c.freshFlag)
	}
	return append(args, c.batchFlag, descriptorPath)
}

// Convert starts a batch conversion of descriptorPath without waiting for it.
func (c *Client) Convert(ctx context.Context, descriptorPath string) *Task {
	return StartTask(ctx, c.exec, c.binary, c.Args(descriptorPath), c.buffer)
}
