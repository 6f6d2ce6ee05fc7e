package meta

// SchemaFile is one discovered input file and the module name derived from it.
type SchemaFile struct {
	Path       string `json:"path"`
	ModuleName string `json:"moduleName"`
}

// Job holds everything a single generation run works on.
// Shared between the driver, the compiler backends and the manifest writer.
//
// ImportRoot is both the directory that was scanned and the import path handed to
// the schema compiler. Keep it the only copy of that path.
type Job struct {
	ImportRoot string
	OutputDir  string
	Files      []SchemaFile // discovery order
}

// Paths returns the schema file paths in discovery order.
func (j *Job) Paths() []string {
	out := make([]string, len(j.Files))
	for i, f := range j.Files {
		out[i] = f.Path
	}
	return out
}

// ModuleNames returns the derived module names in discovery order.
func (j *Job) ModuleNames() []string {
	out := make([]string, len(j.Files))
	for i, f := range j.Files {
		out[i] = f.ModuleName
	}
	return out
}

// Result describes a successful run.
type Result struct {
	Job          *Job
	ManifestPath string
	Fingerprint  string // hex BLAKE2b-256 of the manifest bytes
}
