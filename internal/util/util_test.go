package util

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckWritable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CheckWritable(dir))

	err := CheckWritable(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	file := filepath.Join(dir, "mod.rs")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	require.Error(t, CheckWritable(file))
}

func TestCheckWritable_ReadOnly(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err := CheckWritable(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotWritable))
}
