package gpubuild

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// uploadCandidates lists the files worth publishing: the artifact itself
// plus the compressed duplicate and the archive when they exist.
func uploadCandidates(bc *BuildConfig) ([]string, error) {
	artifact := artifactPath(bc)
	if _, err := os.Stat(artifact); err != nil {
		return nil, fmt.Errorf("%w: %s", errArtifactMissing, artifact)
	}
	files := []string{artifact}
	for _, extra := range []string{compressedPath(bc), archivePath(bc)} {
		if _, err := os.Stat(extra); err == nil {
			files = append(files, extra)
		}
	}
	return files, nil
}

// uploadArtifacts publishes the build output to the configured R2 bucket
// under <binary>/<target>/.
func uploadArtifacts(ctx context.Context, bc *BuildConfig, store objectStore) error {
	files, err := uploadCandidates(bc)
	if err != nil {
		return err
	}

	for _, file := range files {
		key := path.Join(bc.BinaryName, bc.Target, filepath.Base(file))
		colArrow.Print("-> ")
		colSuccess.Printf("Uploading %s\n", key)
		if err := store.UploadLocalFile(ctx, key, file); err != nil {
			return fmt.Errorf("failed to upload %s: %w", key, err)
		}
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Uploaded %d file(s)\n", len(files))
	return nil
}
