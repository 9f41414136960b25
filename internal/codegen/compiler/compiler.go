// Package compiler drives the external interface-definition compiler
// (sdbus++) that produces per-interface bindings.
//
// Invocations are serial. For every interface each artifact kind is run in
// table order, and the compiler's stdout becomes the content of the kind's
// output file.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Alia5/pimgen/internal/codegen/extra"
	"github.com/Alia5/pimgen/internal/codegen/generr"
	"github.com/Alia5/pimgen/internal/log"
)

// DefaultCommand is the compiler looked up in PATH when none is configured.
const DefaultCommand = "sdbus++"

// Kind is one artifact the compiler can emit for an interface. Path maps a
// dotted interface name to a slash-separated path relative to the output
// directory.
type Kind struct {
	Name string
	Path func(iface string) string
}

// Kinds lists the generated artifacts in invocation order.
var Kinds = []Kind{
	{Name: "server-cpp", Path: extra.SourceFile},
	{Name: "server-header", Path: extra.HeaderPath},
}

type Options struct {
	// Command is the compiler executable; DefaultCommand when empty.
	Command string
	// Root is passed to the compiler with -r so it can resolve definitions.
	Root      string
	OutputDir string
	// Timeout bounds each invocation. Zero disables the bound.
	Timeout          time.Duration
	CleanupOnFailure bool
}

type Invoker struct {
	opts    Options
	logger  *slog.Logger
	written []string
}

// Result is the outcome of one compiler process.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   string
	Duration time.Duration
}

func New(logger *slog.Logger, opts Options) *Invoker {
	if opts.Command == "" {
		opts.Command = DefaultCommand
	}
	return &Invoker{opts: opts, logger: logger}
}

// Run generates every kind for every interface and returns the written
// paths in invocation order. The first failure stops the run; with
// CleanupOnFailure the files written so far are removed first.
func (iv *Invoker) Run(ctx context.Context, ifaces []string) ([]string, error) {
	iv.written = iv.written[:0]
	for _, iface := range ifaces {
		for _, kind := range Kinds {
			if err := iv.generate(ctx, iface, kind); err != nil {
				if iv.opts.CleanupOnFailure {
					iv.cleanup()
				}
				return nil, err
			}
		}
	}
	iv.logger.Info("Generated interface bindings", "interfaces", len(ifaces), "files", len(iv.written))
	return append([]string(nil), iv.written...), nil
}

// Args builds the compiler argument list for one invocation.
func (iv *Invoker) Args(iface string, kind Kind) []string {
	return []string{"-r", iv.opts.Root, "interface", kind.Name, iface}
}

func (iv *Invoker) generate(ctx context.Context, iface string, kind Kind) error {
	dest := filepath.Join(iv.opts.OutputDir, filepath.FromSlash(kind.Path(iface)))

	res, err := iv.execute(ctx, iv.Args(iface, kind)...)
	if err != nil {
		stderr := ""
		if res != nil {
			stderr = strings.TrimSpace(res.Stderr)
		}
		return generr.ExternalTool(iface, kind.Name, stderr, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return generr.FileSystem(filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, res.Stdout, 0o644); err != nil {
		return generr.FileSystem(dest, err)
	}
	iv.written = append(iv.written, dest)

	iv.logger.Debug("Generated binding", "interface", iface, "kind", kind.Name, "file", dest, "duration", res.Duration)
	return nil
}

// execute runs the compiler once. A non-nil Result accompanies errors
// whenever the process was started.
func (iv *Invoker) execute(ctx context.Context, args ...string) (*Result, error) {
	if iv.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, iv.opts.Command, args...)
	cmd.WaitDelay = time.Second

	var stdout bytes.Buffer
	var stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	iv.logger.Log(ctx, log.LevelTrace, "Running compiler", "command", iv.opts.Command, "args", strings.Join(args, " "))
	err := cmd.Run()

	if cmd.ProcessState == nil {
		if err == nil {
			err = errors.New("process did not start")
		}
		return nil, fmt.Errorf("launch %s: %w", iv.opts.Command, err)
	}

	result := &Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	iv.logger.Log(ctx, log.LevelTrace, "Compiler exited",
		"command", iv.opts.Command, "exit", result.ExitCode, "stdout_bytes", len(result.Stdout),
		"stderr", strings.TrimSpace(result.Stderr), "duration", result.Duration)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, fmt.Errorf("timed out after %s: %w", iv.opts.Timeout, ctxErr)
		}
		return result, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, fmt.Errorf("command exited with code %d", result.ExitCode)
		}
		return result, fmt.Errorf("command failed: %w", err)
	}
	return result, nil
}

func (iv *Invoker) cleanup() {
	for _, path := range iv.written {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			iv.logger.Warn("Failed to remove partial output", "file", path, "error", err)
			continue
		}
		iv.logger.Debug("Removed partial output", "file", path)
	}
	iv.written = iv.written[:0]
}
