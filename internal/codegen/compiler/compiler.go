// Package compiler adapts schema compilers to the generator.
//
// A Compiler compiles exactly the files it is given, resolves imports against
// importRoot and writes one generated unit per input file into outDir. Every
// failure is reported as a *meta.CompilationError (or *meta.IOError when an
// in-process backend cannot write its output); there is no partial success.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ceresdb/protogen/internal/log"
)

type Compiler interface {
	Compile(ctx context.Context, files []string, importRoot, outDir string) error
}

// Options configures the available backends. Fields a backend does not use are ignored.
type Options struct {
	Protoc     string            // protoc binary, looked up in PATH when not absolute
	Plugins    []string          // protoc plugins, each gets --<name>_out=<outDir>
	PluginOpts map[string]string // plugin name -> value of --<name>_opt

	Logger *slog.Logger
	Raw    log.RawLogger
}

type Factory func(opts Options) Compiler

// UnitExt returns the extension of the units c writes, or "" when it depends
// on configuration (protoc plugins decide their own).
func UnitExt(c Compiler) string {
	if u, ok := c.(interface{ UnitExt() string }); ok {
		return u.UnitExt()
	}
	return ""
}

var backends = map[string]Factory{
	"protoc":     newProtoc,
	"descriptor": newDescriptor,
}

// New returns the backend registered under name.
func New(name string, opts Options) (Compiler, error) {
	factory, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unsupported compiler backend '%s' (supported: %v)", name, Supported())
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Raw == nil {
		opts.Raw = log.NewRaw(nil)
	}
	return factory(opts), nil
}

// Supported lists the registered backend names, sorted.
func Supported() []string {
	names := make([]string, 0, len(backends))
	for k := range backends {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
