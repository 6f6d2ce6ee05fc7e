package meta

import "fmt"

// FilesystemError is returned when the input root cannot be traversed or the
// output directory cannot be used.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem error at %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// CompilationError carries the schema compiler's diagnostics verbatim.
type CompilationError struct {
	Backend     string
	Diagnostics string
	Err         error
}

func (e *CompilationError) Error() string {
	if e.Diagnostics == "" {
		return fmt.Sprintf("%s: compilation failed: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("%s: compilation failed:\n%s", e.Backend, e.Diagnostics)
}

func (e *CompilationError) Unwrap() error { return e.Err }

// IOError is returned when the manifest cannot be created or written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ModuleCollisionError is returned when two schema files derive the same module name.
type ModuleCollisionError struct {
	ModuleName   string
	FirstSource  string
	SecondSource string
}

// Error implements the error interface.
func (e *ModuleCollisionError) Error() string {
	return fmt.Sprintf(
		"module name collision: '%s' derived from both:\n"+
			"  - %s\n"+
			"  - %s\n\n"+
			"Rename one of the files so the text before the first '.' differs.",
		e.ModuleName, e.FirstSource, e.SecondSource)
}
