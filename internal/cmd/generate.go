package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Alia5/pimgen/internal/codegen/compiler"
	"github.com/Alia5/pimgen/internal/codegen/generator"
)

type Generate struct {
	OutputDir        string        `name:"output-dir" short:"o" help:"Output directory" default:"." type:"path" env:"PIMGEN_OUTPUT_DIR"`
	Dir              string        `short:"d" help:"Location of files to process (default: <tool-dir>/example)" type:"path" env:"PIMGEN_DIR"`
	ToolDir          string        `help:"Directory holding the bundled example tree (default: directory of the executable)" type:"path" env:"PIMGEN_TOOL_DIR"`
	Template         string        `help:"Template for the aggregate source (default: built-in generated.cpp template)" type:"path" env:"PIMGEN_TEMPLATE"`
	Compiler         string        `help:"Interface definition compiler" default:"sdbus++" env:"PIMGEN_COMPILER"`
	CompilerTimeout  time.Duration `help:"Timeout for a single compiler invocation (0 disables)" default:"1m" env:"PIMGEN_COMPILER_TIMEOUT"`
	CleanupOnFailure bool          `help:"Remove bindings written by a run that fails" env:"PIMGEN_CLEANUP_ON_FAILURE"`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return g.Execute(ctx, logger)
}

func (g *Generate) Execute(ctx context.Context, logger *slog.Logger) error {
	gen, err := generator.New(g.GeneratorConfig(), logger)
	if err != nil {
		return err
	}
	_, err = gen.Run(ctx)
	return err
}

// GeneratorConfig resolves the flags into an explicit generator.Config.
func (g *Generate) GeneratorConfig() generator.Config {
	dir := g.Dir
	if dir == "" {
		dir = filepath.Join(g.resolveToolDir(), "example")
	}
	comp := g.Compiler
	if comp == "" {
		comp = compiler.DefaultCommand
	}
	return generator.Config{
		InputDir:         dir,
		OutputDir:        g.OutputDir,
		Template:         g.Template,
		Compiler:         comp,
		CompilerTimeout:  g.CompilerTimeout,
		CleanupOnFailure: g.CleanupOnFailure,
	}
}

func (g *Generate) resolveToolDir() string {
	if g.ToolDir != "" {
		return g.ToolDir
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
