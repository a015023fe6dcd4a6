// Package source reads raw metric text from kernel pseudo-files, external
// utilities and gopsutil, and turns it into typed readings. Readers never
// fail: every family has a fallback value and an ok flag.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrUnavailable wraps every failure a Source reports.
var ErrUnavailable = errors.New("source unavailable")

// Source performs one blocking read of an external fact.
type Source interface {
	Read(ctx context.Context) (string, error)
}

// File reads a file in one go.
type File string

func (f File) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, string(f), err)
	}
	b, err := os.ReadFile(string(f))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return string(b), nil
}

func (f File) String() string { return string(f) }

// Command runs a program and returns its stdout. A non-zero exit status,
// a missing binary or a timeout are all failures.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// Cmd is shorthand for a Command with the given timeout.
func Cmd(timeout time.Duration, name string, args ...string) Command {
	return Command{Name: name, Args: args, Timeout: timeout}
}

func (c Command) Read(ctx context.Context) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdout = &stdout
	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, c, ctx.Err())
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, c, err)
	}
	return stdout.String(), nil
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Func adapts a function to Source. Errors are wrapped with ErrUnavailable.
type Func func(ctx context.Context) (string, error)

func (f Func) Read(ctx context.Context) (string, error) {
	out, err := f(ctx)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, nil
}

// Static always returns the same text. Handy for fixtures.
func Static(text string) Source {
	return Func(func(context.Context) (string, error) { return text, nil })
}

// Missing always fails.
func Missing(reason string) Source {
	return Func(func(context.Context) (string, error) {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, reason)
	})
}
