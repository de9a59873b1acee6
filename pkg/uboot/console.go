// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package uboot drives the fuse command of a U-Boot console so that fuses
// can be read and burned on a board that has not booted Linux.
package uboot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultPrompt is the U-Boot hush shell prompt.
const DefaultPrompt = "=> "

// DefaultTimeout bounds the wait for a prompt after each command.
const DefaultTimeout = 5 * time.Second

// ErrTimeout is returned when the prompt does not appear in time.
var ErrTimeout = errors.New("timed out waiting for prompt")

// ErrClosed is returned by Exec after Close.
var ErrClosed = errors.New("console closed")

// Console runs commands on a U-Boot shell reachable over a byte stream
// (UART, WebSocket bridge). Commands are run one at a time.
type Console struct {
	rw      io.ReadWriter
	prompt  []byte
	timeout time.Duration
	log     *slog.Logger

	once      sync.Once
	chunks    chan []byte
	readErr   chan error
	pending   []byte
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// Option configures a Console.
type Option func(*Console)

// WithPrompt overrides DefaultPrompt.
func WithPrompt(prompt string) Option {
	return func(c *Console) { c.prompt = []byte(prompt) }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Console) { c.timeout = d }
}

// WithLogger sets the logger for command traces.
func WithLogger(log *slog.Logger) Option {
	return func(c *Console) { c.log = log }
}

// NewConsole wraps rw. Close the console, not rw, when done: Close also
// closes rw when it is an io.Closer.
func NewConsole(rw io.ReadWriter, opts ...Option) *Console {
	c := &Console{
		rw:      rw,
		prompt:  []byte(DefaultPrompt),
		timeout: DefaultTimeout,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// start launches the reader goroutine. A blocking Read cannot be
// interrupted, so reads happen off the caller's goroutine and the caller
// waits with a deadline. The goroutine exits on a read error or after
// Close; a Read blocked on a stream that is not an io.Closer only returns
// when the stream does.
func (c *Console) start() {
	c.once.Do(func() {
		c.chunks = make(chan []byte, 64)
		c.readErr = make(chan error, 1)
		go func() {
			defer close(c.stopped)
			buf := make([]byte, 256)
			for {
				n, err := c.rw.Read(buf)
				if n > 0 {
					chunk := make([]byte, n)
					copy(chunk, buf[:n])
					select {
					case c.chunks <- chunk:
					case <-c.done:
						return
					}
				}
				if err != nil {
					select {
					case c.readErr <- err:
					case <-c.done:
					}
					return
				}
			}
		}()
	})
}

// Close stops the reader goroutine and closes the stream if it is an
// io.Closer. Later commands fail with ErrClosed.
func (c *Console) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		if closer, ok := c.rw.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return err
}

// discard drops output that arrived while no command was waiting, such as
// the late answer to a command that timed out.
func (c *Console) discard() {
	for {
		select {
		case chunk := <-c.chunks:
			c.log.Debug("discarded console output", "output", string(chunk))
		default:
			return
		}
	}
}

// WaitPrompt sends an empty line and waits for the prompt.
func (c *Console) WaitPrompt() error {
	_, err := c.Exec("")
	return err
}

// Exec runs cmd and returns its output without the echoed command line and
// the trailing prompt. Only a reply that echoes cmd is accepted; replies to
// earlier commands are skipped.
func (c *Console) Exec(cmd string) (string, error) {
	select {
	case <-c.done:
		return "", ErrClosed
	default:
	}
	c.start()
	c.discard()
	c.pending = c.pending[:0]

	c.log.Debug("console command", "cmd", cmd)
	if _, err := c.rw.Write([]byte(cmd + "\n")); err != nil {
		return "", fmt.Errorf("write %q: %w", cmd, err)
	}

	deadline := time.NewTimer(c.timeout)
	defer deadline.Stop()
	for {
		if bytes.HasSuffix(c.pending, c.prompt) {
			replies := bytes.Split(c.pending[:len(c.pending)-len(c.prompt)], c.prompt)
			c.pending = c.pending[:0]
			for _, reply := range replies {
				out, ok := stripEcho(string(reply), cmd)
				if !ok {
					c.log.Debug("skipped console reply", "cmd", cmd, "output", string(reply))
					continue
				}
				c.log.Debug("console output", "cmd", cmd, "output", out)
				return out, nil
			}
		}
		select {
		case chunk := <-c.chunks:
			c.pending = append(c.pending, chunk...)
		case err := <-c.readErr:
			c.readErr <- err
			return "", fmt.Errorf("read console: %w", err)
		case <-c.done:
			return "", ErrClosed
		case <-deadline.C:
			return "", fmt.Errorf("%q: %w %q after %v", cmd, ErrTimeout, string(c.prompt), c.timeout)
		}
	}
}

// stripEcho normalizes line endings and drops the echoed command line. It
// reports false when the reply does not start with the echo of cmd.
func stripEcho(reply, cmd string) (string, bool) {
	reply = strings.ReplaceAll(reply, "\r\n", "\n")
	reply = strings.ReplaceAll(reply, "\r", "")
	first, rest, found := strings.Cut(reply, "\n")
	if !found || strings.TrimSpace(first) != strings.TrimSpace(cmd) {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
