//go:build windows

package util

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func checkWritable(dir string) error {
	p, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, dir, err)
	}
	if attrs&windows.FILE_ATTRIBUTE_READONLY != 0 {
		return fmt.Errorf("%w: %s: read-only attribute set", ErrNotWritable, dir)
	}
	return nil
}
