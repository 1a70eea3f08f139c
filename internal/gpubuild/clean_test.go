package gpubuild

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanBuildIdempotent(t *testing.T) {
	chdir(t, t.TempDir())
	bc := testBuildConfig()
	require.NoError(t, os.MkdirAll(bc.OutputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bc.OutputDir, bc.BinaryName), []byte("bin"), 0o755))

	exec := NewExecutor(context.Background(), nil, 0)

	require.NoError(t, cleanBuild(bc, exec))
	_, err := os.Stat(bc.OutputDir)
	assert.True(t, os.IsNotExist(err))

	// Nothing left to remove; the second run must still succeed.
	require.NoError(t, cleanBuild(bc, exec))
}
