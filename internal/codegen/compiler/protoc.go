package compiler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/ceresdb/protogen/internal/codegen/meta"
	"github.com/ceresdb/protogen/internal/log"
)

const protocBackend = "protoc"

// protocCompiler shells out to the protoc binary.
type protocCompiler struct {
	opts Options
}

func newProtoc(opts Options) Compiler {
	if opts.Protoc == "" {
		opts.Protoc = "protoc"
	}
	return &protocCompiler{opts: opts}
}

// Args builds the protoc command line for one run.
func (p *protocCompiler) Args(files []string, importRoot, outDir string) []string {
	args := []string{"--proto_path=" + importRoot}
	for _, plugin := range p.opts.Plugins {
		args = append(args, fmt.Sprintf("--%s_out=%s", plugin, outDir))
		if opt := p.opts.PluginOpts[plugin]; opt != "" {
			args = append(args, fmt.Sprintf("--%s_opt=%s", plugin, opt))
		}
	}
	return append(args, files...)
}

func (p *protocCompiler) Compile(ctx context.Context, files []string, importRoot, outDir string) error {
	if len(p.opts.Plugins) == 0 {
		return &meta.CompilationError{Backend: protocBackend, Err: fmt.Errorf("no protoc plugins configured")}
	}

	args := p.Args(files, importRoot, outDir)
	p.opts.Logger.Debug("Running protoc", "binary", p.opts.Protoc, "args", args)

	var stderr bytes.Buffer
	rawOut := log.Writer(p.opts.Raw, "protoc stdout")
	rawErr := log.Writer(p.opts.Raw, "protoc stderr")
	cmd := exec.CommandContext(ctx, p.opts.Protoc, args...)
	cmd.Stdout = rawOut
	cmd.Stderr = io.MultiWriter(&stderr, rawErr)

	err := cmd.Run()
	rawOut.Flush()
	rawErr.Flush()
	if err != nil {
		return &meta.CompilationError{
			Backend:     protocBackend,
			Diagnostics: stderr.String(),
			Err:         err,
		}
	}

	p.opts.Logger.Info("protoc finished", "files", len(files), "plugins", p.opts.Plugins)
	return nil
}
