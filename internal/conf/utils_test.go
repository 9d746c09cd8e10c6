package conf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfigPaths(t *testing.T) {
	paths, err := GetDefaultConfigPaths()
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		assert.Contains(t, strings.ToLower(path), "bloomcal")
	}
}

func TestMoveFile(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	src := filepath.Join(srcDir, "config-tmp.yaml")
	dst := filepath.Join(dstDir, "config.yaml")
	require.NoError(t, os.WriteFile(src, []byte("garden:\n  name: Test\n"), 0o644))

	require.NoError(t, moveFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Test")

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestConvertUTCToLocal(t *testing.T) {
	utc := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	local, err := ConvertUTCToLocal(utc)
	require.NoError(t, err)

	// Same instant, possibly a different wall clock.
	assert.True(t, local.Equal(utc))
}

func TestGetBasePathCreatesDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "logs", "web")

	got := GetBasePath(base)
	assert.Equal(t, filepath.Clean(base), got)

	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
