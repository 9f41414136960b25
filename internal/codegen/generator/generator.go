package generator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Alia5/pimgen/internal/codegen/compiler"
	"github.com/Alia5/pimgen/internal/codegen/descriptor"
	"github.com/Alia5/pimgen/internal/codegen/extra"
	"github.com/Alia5/pimgen/internal/codegen/generr"
	"github.com/Alia5/pimgen/internal/codegen/meta"
	"github.com/Alia5/pimgen/internal/codegen/render"
)

// Input tree layout, relative to Config.InputDir.
const (
	EventsDir          = "events.d"
	InterfacesDir      = "interfaces.d"
	ExtraInterfacesDir = "extra_interfaces.d"
)

// Config is everything a run depends on. Nothing is derived from the
// process environment once a Config exists.
type Config struct {
	InputDir  string `validate:"required,dir"`
	OutputDir string `validate:"required"`
	// Template is a template file path; empty selects the built-in one.
	Template         string
	Compiler         string        `validate:"required"`
	CompilerTimeout  time.Duration `validate:"gte=0"`
	CleanupOnFailure bool
}

type Generator struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Generator, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}
	return &Generator{cfg: cfg, logger: logger}, nil
}

// Result lists the files a successful run wrote.
type Result struct {
	Aggregate string
	Bindings  []string
}

// Run regenerates every output. It stops at the first error; outputs of an
// aborted run must not be used.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	g.logger.Info("Starting code generation", "input", g.cfg.InputDir, "output", g.cfg.OutputDir)

	md, err := g.ScanAll()
	if err != nil {
		return nil, err
	}

	r, err := render.New(g.cfg.Template)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return nil, generr.FileSystem(g.cfg.OutputDir, err)
	}

	aggregate, err := r.WriteFile(g.logger, g.cfg.OutputDir, md)
	if err != nil {
		return nil, err
	}

	extraRoot := filepath.Join(g.cfg.InputDir, ExtraInterfacesDir)
	ifaces, err := extra.Discover(g.logger, extraRoot)
	if err != nil {
		return nil, err
	}
	g.logger.Info("Found extra interfaces", "count", len(ifaces))

	inv := compiler.New(g.logger, compiler.Options{
		Command:          g.cfg.Compiler,
		Root:             extraRoot,
		OutputDir:        g.cfg.OutputDir,
		Timeout:          g.cfg.CompilerTimeout,
		CleanupOnFailure: g.cfg.CleanupOnFailure,
	})
	bindings, err := inv.Run(ctx, ifaces)
	if err != nil {
		return nil, err
	}

	g.logger.Info("Code generation complete", "output", g.cfg.OutputDir, "files", len(bindings)+1)
	return &Result{Aggregate: aggregate, Bindings: bindings}, nil
}

// ScanAll loads the events and interfaces that make up the template model.
func (g *Generator) ScanAll() (*meta.Model, error) {
	g.logger.Debug("Loading event descriptors")
	events, err := descriptor.LoadEvents(g.logger, filepath.Join(g.cfg.InputDir, EventsDir))
	if err != nil {
		return nil, err
	}
	g.logger.Info("Found events", "count", len(events))

	g.logger.Debug("Loading interface descriptors")
	ifaces, err := descriptor.LoadInterfaces(g.logger, filepath.Join(g.cfg.InputDir, InterfacesDir))
	if err != nil {
		return nil, err
	}
	g.logger.Info("Found interfaces", "count", len(ifaces))

	return &meta.Model{Interfaces: ifaces, Events: events}, nil
}
