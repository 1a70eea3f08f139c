package gpubuild

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	keys []string
	err  error
}

func (f *fakeStore) UploadLocalFile(_ context.Context, key, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	return nil
}

func TestUploadArtifactsMissingArtifact(t *testing.T) {
	bc := testBuildConfig()
	bc.OutputDir = t.TempDir()
	err := uploadArtifacts(context.Background(), bc, &fakeStore{})
	assert.ErrorIs(t, err, errArtifactMissing)
}

func TestUploadArtifacts(t *testing.T) {
	bc := testBuildConfig()
	bc.OutputDir = t.TempDir()
	require.NoError(t, os.WriteFile(artifactPath(bc), []byte("bin"), 0o755))
	require.NoError(t, os.WriteFile(compressedPath(bc), []byte("packed"), 0o755))

	store := &fakeStore{}
	require.NoError(t, uploadArtifacts(context.Background(), bc, store))
	assert.Equal(t, []string{
		"gpugovernor/aarch64-linux-android/gpugovernor",
		"gpugovernor/aarch64-linux-android/gpugovernor_compressed",
	}, store.keys)
}

func TestUploadArtifactsIncludesArchive(t *testing.T) {
	bc := testBuildConfig()
	bc.OutputDir = t.TempDir()
	require.NoError(t, os.WriteFile(artifactPath(bc), []byte("bin"), 0o755))
	require.NoError(t, os.WriteFile(archivePath(bc), []byte("tarball"), 0o644))

	store := &fakeStore{}
	require.NoError(t, uploadArtifacts(context.Background(), bc, store))
	assert.Contains(t, store.keys,
		"gpugovernor/aarch64-linux-android/"+filepath.Base(archivePath(bc)))
}

func TestUploadArtifactsPropagatesFailures(t *testing.T) {
	bc := testBuildConfig()
	bc.OutputDir = t.TempDir()
	require.NoError(t, os.WriteFile(artifactPath(bc), []byte("bin"), 0o755))

	boom := errors.New("connection reset")
	err := uploadArtifacts(context.Background(), bc, &fakeStore{err: boom})
	assert.ErrorIs(t, err, boom)
}
