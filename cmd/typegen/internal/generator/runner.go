package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

var (
	// ErrToolMissing is returned when the runner executable is not on PATH.
	ErrToolMissing = errors.New("generator runner not found")

	// ErrGenerateFailed is returned when the generator exits non-zero or
	// leaves no output behind.
	ErrGenerateFailed = errors.New("generator invocation failed")
)

// Config holds the generator invocation
type Config struct {
	Runner    string        // executable resolved on PATH, e.g. bun
	Generator string        // package run by the runner, e.g. openapi-typescript
	Schema    string        // input OpenAPI document
	Output    string        // file the generator writes
	Flags     []string      // appended after -o <output>
	Timeout   time.Duration // 0 waits indefinitely
}

// Runner invokes the external type generator
type Runner struct {
	config   Config
	logger   *slog.Logger
	lookPath func(string) (string, error)
}

// NewRunner creates a new generator runner
func NewRunner(config Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		config:   config,
		logger:   logger,
		lookPath: exec.LookPath,
	}
}

// CheckAvailable verifies the runner executable resolves on PATH.
func (r *Runner) CheckAvailable() error {
	if _, err := r.lookPath(r.config.Runner); err != nil {
		return fmt.Errorf("%w: %s not found, install from %s", ErrToolMissing, r.config.Runner, installHint(r.config.Runner))
	}
	return nil
}

// Args returns the full argument list passed to the runner.
func (r *Runner) Args() []string {
	args := []string{}
	if r.config.Generator != "" {
		args = append(args, r.config.Generator)
	}
	args = append(args, r.config.Schema, "-o", r.config.Output)
	return append(args, r.config.Flags...)
}

// Generate runs the generator once and blocks until it exits. The output
// file must exist afterwards.
func (r *Runner) Generate(ctx context.Context) error {
	if err := r.CheckAvailable(); err != nil {
		return err
	}

	if dir := filepath.Dir(r.config.Output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	args := r.Args()
	r.logger.Info("Running generator", "cmd", r.config.Runner, "args", args)

	cmd := exec.CommandContext(ctx, r.config.Runner, args...)
	stdout := r.lineLogger(slog.LevelDebug)
	stderr := r.lineLogger(slog.LevelWarn)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Grandchildren may keep the pipes open after the runner is killed.
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	stdout.Flush()
	stderr.Flush()
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return fmt.Errorf("%w: %v; try installing %s first: `%s`", ErrGenerateFailed, err, r.config.Generator, installCommand(r.config.Runner, r.config.Generator))
	}

	if _, err := os.Stat(r.config.Output); err != nil {
		return fmt.Errorf("%w: expected output %s: %v", ErrGenerateFailed, r.config.Output, err)
	}

	r.logger.Info("Generator finished", "output", r.config.Output)
	return nil
}

// maxLineLength caps a single logged line. Longer lines are split.
const maxLineLength = 64 * 1024

// waitDelay bounds how long Generate waits for the output pipes to close
// once the runner has exited or been killed.
const waitDelay = 2 * time.Second

// lineWriter forwards the child's output to the logger line by line
type lineWriter struct {
	logger *slog.Logger
	level  slog.Level
	source string
	buf    []byte
}

func (r *Runner) lineLogger(level slog.Level) *lineWriter {
	return &lineWriter{logger: r.logger, level: level, source: r.config.Generator}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	for len(w.buf) >= maxLineLength {
		w.emit(w.buf[:maxLineLength])
		w.buf = w.buf[maxLineLength:]
	}
	return len(p), nil
}

// Flush logs any trailing partial line.
func (w *lineWriter) Flush() {
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *lineWriter) emit(line []byte) {
	if text := string(bytes.TrimRight(line, "\r")); text != "" {
		w.logger.Log(context.Background(), w.level, text, "source", w.source)
	}
}

func installHint(runner string) string {
	switch runner {
	case "bun", "bunx":
		return "https://bun.sh/"
	case "npx", "node", "npm":
		return "https://nodejs.org/"
	}
	return "your package manager"
}

func installCommand(runner, generator string) string {
	switch runner {
	case "bun", "bunx":
		return fmt.Sprintf("bun i -D %s typescript", generator)
	case "pnpm":
		return fmt.Sprintf("pnpm add -D %s typescript", generator)
	case "yarn":
		return fmt.Sprintf("yarn add -D %s typescript", generator)
	}
	return fmt.Sprintf("npm i -D %s typescript", generator)
}
