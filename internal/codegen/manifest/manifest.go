// Package manifest writes the file that re-exports every generated unit as a
// public module.
package manifest

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/ceresdb/protogen/internal/codegen/common"
	"github.com/ceresdb/protogen/internal/codegen/meta"
)

// Format is a manifest file name plus the fixed template used for each module line.
type Format struct {
	Name     string
	FileName string
	UnitExt  string // extension of the source units the lines refer to
	render   func(moduleName string) string
}

var formats = map[string]Format{
	"rust": {
		Name:     "rust",
		FileName: "mod.rs",
		UnitExt:  ".rs",
		render:   func(m string) string { return fmt.Sprintf("pub mod %s;\n", m) },
	},
	"typescript": {
		Name:     "typescript",
		FileName: "index.ts",
		UnitExt:  ".ts",
		render:   func(m string) string { return fmt.Sprintf("export * as %s from \"./%s\";\n", m, m) },
	},
}

// Lookup returns the format registered under name.
func Lookup(name string) (Format, error) {
	f, ok := formats[name]
	if !ok {
		return Format{}, fmt.Errorf("unsupported manifest format '%s' (supported: %v)", name, Supported())
	}
	return f, nil
}

// Supported lists the registered format names, sorted.
func Supported() []string {
	names := make([]string, 0, len(formats))
	for k := range formats {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Render returns the exact manifest bytes for names, one line each, in order.
// Duplicate names are written as-is.
func Render(format Format, names []string) []byte {
	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(format.render(name))
	}
	return buf.Bytes()
}

// Write creates or truncates the manifest in outDir and returns its path and fingerprint.
// It does not check that a generated unit exists for each name.
func Write(logger *slog.Logger, outDir string, format Format, names []string) (string, string, error) {
	outputFile := filepath.Join(outDir, format.FileName)
	logger.Debug("Generating manifest", "file", outputFile, "modules", len(names))

	content := Render(format, names)
	if err := os.WriteFile(outputFile, content, 0o644); err != nil {
		return "", "", &meta.IOError{Path: outputFile, Err: err}
	}

	fingerprint := common.Fingerprint(content)
	logger.Info("Generated manifest", "file", outputFile, "modules", len(names), "blake2b", fingerprint)
	return outputFile, fingerprint, nil
}
