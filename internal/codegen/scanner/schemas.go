package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ceresdb/protogen/internal/codegen/meta"
)

// ScanSchemas walks root recursively and returns one SchemaFile per entry that is
// neither a directory nor a symbolic link, in traversal order.
func ScanSchemas(root string) ([]meta.SchemaFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &meta.FilesystemError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &meta.FilesystemError{Path: root, Err: errors.New("not a directory")}
	}

	// A symlinked root is followed; links below it are not.
	walkRoot := root
	if li, err := os.Lstat(root); err == nil && li.Mode()&fs.ModeSymlink != 0 {
		walkRoot = root + string(filepath.Separator)
	}

	var files []meta.SchemaFile
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &meta.FilesystemError{Path: path, Err: err}
		}
		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		files = append(files, meta.SchemaFile{
			Path:       path,
			ModuleName: ModuleName(d.Name()),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// ModuleName returns the part of a file's base name before the first '.'.
// "order_service.v2.proto" -> "order_service", "readme" -> "readme".
func ModuleName(base string) string {
	name, _, _ := strings.Cut(base, ".")
	return name
}

// SortByPath orders files by their slash-separated path so the result does not
// depend on the platform's directory listing.
func SortByPath(files []meta.SchemaFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return filepath.ToSlash(files[i].Path) < filepath.ToSlash(files[j].Path)
	})
}

// FindCollisions reports every module name derived from more than one file.
// The first file seen for a name is reported as FirstSource for each later duplicate.
func FindCollisions(files []meta.SchemaFile) []*meta.ModuleCollisionError {
	firstSeen := make(map[string]string, len(files))
	var collisions []*meta.ModuleCollisionError
	for _, f := range files {
		prev, ok := firstSeen[f.ModuleName]
		if !ok {
			firstSeen[f.ModuleName] = f.Path
			continue
		}
		collisions = append(collisions, &meta.ModuleCollisionError{
			ModuleName:   f.ModuleName,
			FirstSource:  prev,
			SecondSource: f.Path,
		})
	}
	return collisions
}

// CollisionsError joins collisions into a single error, or returns nil if there are none.
func CollisionsError(collisions []*meta.ModuleCollisionError) error {
	if len(collisions) == 0 {
		return nil
	}
	errs := make([]error, len(collisions))
	for i, c := range collisions {
		errs[i] = c
	}
	return fmt.Errorf("%d duplicate module name(s): %w", len(collisions), errors.Join(errs...))
}
