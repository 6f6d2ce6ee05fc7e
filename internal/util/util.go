package util

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotWritable is returned by CheckWritable when the current process cannot
// create files in a directory.
var ErrNotWritable = errors.New("directory is not writable")

// CheckWritable verifies that dir exists, is a directory and accepts new files.
func CheckWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", dir)
	}
	return checkWritable(dir)
}
