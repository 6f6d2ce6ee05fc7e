package testing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CompileCall records one invocation of a MockCompiler.
type CompileCall struct {
	Files      []string
	ImportRoot string
	OutDir     string
}

// MockCompiler stands in for a schema compiler. By default it writes an empty
// "<module>.rs" unit per input file; set Err to make it fail instead.
type MockCompiler struct {
	t     *testing.T
	Err   error
	Calls []CompileCall

	// Skip lists module names for which no unit is written, simulating a
	// compiler that silently drops an output.
	Skip map[string]bool
}

func NewMockCompiler(t *testing.T) *MockCompiler {
	return &MockCompiler{t: t}
}

func (m *MockCompiler) Compile(_ context.Context, files []string, importRoot, outDir string) error {
	m.Calls = append(m.Calls, CompileCall{
		Files:      append([]string(nil), files...),
		ImportRoot: importRoot,
		OutDir:     outDir,
	})
	if m.Err != nil {
		return m.Err
	}
	for _, f := range files {
		name, _, _ := strings.Cut(filepath.Base(f), ".")
		if m.Skip[name] {
			continue
		}
		if err := os.WriteFile(filepath.Join(outDir, name+".rs"), nil, 0o644); err != nil {
			m.t.Fatalf("mock compiler: %v", err)
		}
	}
	return nil
}
