package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ceresdb/protogen/internal/codegen/compiler"
	"github.com/ceresdb/protogen/internal/codegen/generator"
	"github.com/ceresdb/protogen/internal/log"
)

type Generate struct {
	ProtoDir         string            `help:"Directory scanned for schema files; also the import root handed to the compiler" default:"protos" env:"PROTOGEN_PROTO_DIR"`
	OutDir           string            `help:"Output directory for generated units and the manifest" required:"" env:"OUT_DIR"`
	Compiler         string            `help:"Schema compiler backend: protoc or descriptor (in-process, writes descriptor sets)" default:"protoc" enum:"protoc,descriptor" env:"PROTOGEN_COMPILER"`
	Protoc           string            `help:"protoc binary used by the protoc backend" default:"protoc" env:"PROTOC"`
	Plugin           []string          `help:"protoc plugins to run, each writes into the output directory" default:"prost" env:"PROTOGEN_PLUGINS"`
	PluginOpt        map[string]string `help:"Options per protoc plugin, e.g. --plugin-opt tonic=no_client"`
	Format           string            `help:"Manifest format: rust (mod.rs) or typescript (index.ts)" default:"rust" enum:"rust,typescript" env:"PROTOGEN_FORMAT"`
	Sort             bool              `help:"Sort schema files by path instead of keeping directory traversal order" env:"PROTOGEN_SORT"`
	RejectDuplicates bool              `help:"Fail when two schema files derive the same module name" env:"PROTOGEN_REJECT_DUPLICATES"`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return g.Execute(ctx, logger, rawLogger)
}

func (g *Generate) Execute(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	logger.Info("Starting code generation", "protoDir", g.ProtoDir, "outDir", g.OutDir, "compiler", g.Compiler)

	c, err := compiler.New(g.Compiler, compiler.Options{
		Protoc:     g.Protoc,
		Plugins:    g.Plugin,
		PluginOpts: g.PluginOpt,
		Logger:     logger,
		Raw:        rawLogger,
	})
	if err != nil {
		return err
	}

	gen, err := generator.New(g.Config(), c, logger)
	if err != nil {
		return err
	}
	_, err = gen.Run(ctx)
	return err
}

// Config maps the command line onto the generator configuration.
func (g *Generate) Config() generator.Config {
	return generator.Config{
		InputRoot:        g.ProtoDir,
		OutputRoot:       g.OutDir,
		Format:           g.Format,
		SortFiles:        g.Sort,
		RejectDuplicates: g.RejectDuplicates,
	}
}
