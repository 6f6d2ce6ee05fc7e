package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ceresdb/protogen/internal/codegen/compiler"
	"github.com/ceresdb/protogen/internal/codegen/manifest"
	"github.com/ceresdb/protogen/internal/codegen/meta"
	"github.com/ceresdb/protogen/internal/codegen/scanner"
	"github.com/ceresdb/protogen/internal/util"
)

// Stage is a state of a generation run. Runs only move forward; any stage may
// move to Failed.
type Stage int

const (
	Discovering Stage = iota
	Compiling
	WritingManifest
	Done
	Failed
)

func (s Stage) String() string {
	switch s {
	case Discovering:
		return "discovering"
	case Compiling:
		return "compiling"
	case WritingManifest:
		return "writing manifest"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError reports the stage in which a run failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Config is everything a run needs; nothing is read from the environment here.
type Config struct {
	InputRoot  string // scanned for schema files and used as the import root
	OutputRoot string // receives the generated units and the manifest

	Format           string // manifest format, "rust" when empty
	SortFiles        bool   // sort discovered files by path instead of keeping traversal order
	RejectDuplicates bool   // fail before compiling when two files derive the same module name
}

type Generator struct {
	cfg      Config
	format   manifest.Format
	compiler compiler.Compiler
	logger   *slog.Logger
	stage    Stage
}

func New(cfg Config, c compiler.Compiler, logger *slog.Logger) (*Generator, error) {
	if cfg.InputRoot == "" {
		return nil, errors.New("input root must be set")
	}
	if cfg.OutputRoot == "" {
		return nil, errors.New("output root must be set (OUT_DIR)")
	}
	if c == nil {
		return nil, errors.New("compiler must be set")
	}
	if cfg.Format == "" {
		cfg.Format = "rust"
	}
	format, err := manifest.Lookup(cfg.Format)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if ext := compiler.UnitExt(c); ext != "" && ext != format.UnitExt {
		logger.Warn("Compiler output does not match the manifest format; the manifest will name modules no unit provides",
			"format", format.Name, "expects", format.UnitExt, "writes", ext)
	}
	return &Generator{
		cfg:      cfg,
		format:   format,
		compiler: c,
		logger:   logger,
		stage:    Discovering,
	}, nil
}

// Stage returns the current state of the run.
func (g *Generator) Stage() Stage {
	return g.stage
}

// Run discovers, compiles and writes the manifest, stopping at the first failure.
func (g *Generator) Run(ctx context.Context) (*meta.Result, error) {
	g.stage = Discovering
	job, err := g.discover()
	if err != nil {
		return nil, g.fail(err)
	}

	g.stage = Compiling
	if err := g.compile(ctx, job); err != nil {
		return nil, g.fail(err)
	}

	g.stage = WritingManifest
	path, fingerprint, err := manifest.Write(g.logger, job.OutputDir, g.format, job.ModuleNames())
	if err != nil {
		return nil, g.fail(err)
	}

	g.stage = Done
	g.logger.Info("Code generation complete", "output", job.OutputDir, "modules", len(job.Files))
	return &meta.Result{Job: job, ManifestPath: path, Fingerprint: fingerprint}, nil
}

func (g *Generator) fail(err error) error {
	failed := g.stage
	g.stage = Failed
	g.logger.Error("Code generation failed", "stage", failed.String(), "error", err)
	return &StageError{Stage: failed, Err: err}
}

func (g *Generator) discover() (*meta.Job, error) {
	g.logger.Info("Scanning schema files", "dir", g.cfg.InputRoot)

	files, err := scanner.ScanSchemas(g.cfg.InputRoot)
	if err != nil {
		return nil, err
	}
	if g.cfg.SortFiles {
		scanner.SortByPath(files)
	}
	for _, f := range files {
		g.logger.Debug("Discovered schema file", "path", f.Path, "module", f.ModuleName)
	}
	g.logger.Info("Found schema files", "count", len(files))

	if g.cfg.RejectDuplicates {
		if err := scanner.CollisionsError(scanner.FindCollisions(files)); err != nil {
			return nil, err
		}
	}

	return &meta.Job{
		ImportRoot: g.cfg.InputRoot,
		OutputDir:  g.cfg.OutputRoot,
		Files:      files,
	}, nil
}

func (g *Generator) compile(ctx context.Context, job *meta.Job) error {
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return &meta.FilesystemError{Path: job.OutputDir, Err: err}
	}
	if err := util.CheckWritable(job.OutputDir); err != nil {
		return &meta.FilesystemError{Path: job.OutputDir, Err: err}
	}

	if len(job.Files) == 0 {
		g.logger.Warn("No schema files found, skipping compilation", "dir", job.ImportRoot)
		return nil
	}

	g.logger.Info("Compiling schema files", "count", len(job.Files), "importRoot", job.ImportRoot)
	return g.compiler.Compile(ctx, job.Paths(), job.ImportRoot, job.OutputDir)
}
