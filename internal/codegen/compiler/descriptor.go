package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/reporter"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/ceresdb/protogen/internal/codegen/meta"
	"github.com/ceresdb/protogen/internal/codegen/scanner"
)

const descriptorBackend = "descriptor"

// DescriptorExt is the extension of the descriptor sets written by the descriptor backend.
const DescriptorExt = ".binpb"

// descriptorCompiler compiles in process and writes one self-contained
// FileDescriptorSet per input file, named after the file's module name.
type descriptorCompiler struct {
	opts Options
}

func newDescriptor(opts Options) Compiler {
	return &descriptorCompiler{opts: opts}
}

func (d *descriptorCompiler) UnitExt() string { return DescriptorExt }

func (d *descriptorCompiler) Compile(ctx context.Context, files []string, importRoot, outDir string) error {
	names := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(importRoot, f)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return &meta.CompilationError{
				Backend: descriptorBackend,
				Err:     fmt.Errorf("%s is not under import root %s", f, importRoot),
			}
		}
		names[i] = filepath.ToSlash(rel)
	}

	var diags []string
	rep := reporter.NewReporter(
		func(err reporter.ErrorWithPos) error {
			diags = append(diags, err.Error())
			return nil
		},
		func(err reporter.ErrorWithPos) {
			d.opts.Logger.Warn("schema warning", "warning", err.Error())
		},
	)

	c := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: []string{importRoot},
		}),
		Reporter:       rep,
		SourceInfoMode: protocompile.SourceInfoStandard,
	}

	result, err := c.Compile(ctx, names...)
	if err != nil {
		// ErrInvalidSource only means "see the reported errors".
		if !errors.Is(err, reporter.ErrInvalidSource) && !slices.Contains(diags, err.Error()) {
			diags = append(diags, err.Error())
		}
		return &meta.CompilationError{
			Backend:     descriptorBackend,
			Diagnostics: strings.Join(diags, "\n"),
			Err:         err,
		}
	}

	for i, fd := range result {
		data, err := proto.MarshalOptions{Deterministic: true}.Marshal(descriptorSet(fd))
		if err != nil {
			return &meta.CompilationError{Backend: descriptorBackend, Err: fmt.Errorf("encode %s: %w", names[i], err)}
		}
		outputFile := filepath.Join(outDir, scanner.ModuleName(filepath.Base(names[i]))+DescriptorExt)
		if err := os.WriteFile(outputFile, data, 0o644); err != nil {
			return &meta.IOError{Path: outputFile, Err: err}
		}
		d.opts.Logger.Debug("Wrote descriptor set", "source", names[i], "file", outputFile)
	}

	d.opts.Logger.Info("descriptor compilation finished", "files", len(result))
	return nil
}

// descriptorSet returns fd and all of its transitive imports, dependencies first.
func descriptorSet(fd protoreflect.FileDescriptor) *descriptorpb.FileDescriptorSet {
	set := &descriptorpb.FileDescriptorSet{}
	seen := make(map[string]bool)

	var add func(f protoreflect.FileDescriptor)
	add = func(f protoreflect.FileDescriptor) {
		if seen[f.Path()] {
			return
		}
		seen[f.Path()] = true
		imports := f.Imports()
		for i := 0; i < imports.Len(); i++ {
			add(imports.Get(i).FileDescriptor)
		}
		set.File = append(set.File, protodesc.ToFileDescriptorProto(f))
	}
	add(fd)

	return set
}
