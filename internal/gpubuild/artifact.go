package gpubuild

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
	"lukechampine.com/blake3"
)

// ArtifactInfo describes a copied artifact. Recomputed on every copy,
// never cached across runs.
type ArtifactInfo struct {
	Path  string
	Size  int64
	B3Sum string
}

// compiledPath is where the toolchain leaves the release binary.
func compiledPath(bc *BuildConfig) string {
	return filepath.Join("target", bc.Target, "release", bc.BinaryName)
}

// artifactPath is the stable output location of the copied binary.
func artifactPath(bc *BuildConfig) string {
	return filepath.Join(bc.OutputDir, bc.BinaryName)
}

// hashFile computes the BLAKE3 digest of a file, preferring the system
// b3sum when installed and falling back to the in-process implementation.
func hashFile(path string) (string, error) {
	if _, err := exec.LookPath("b3sum"); err == nil {
		cmd := exec.Command("b3sum", "--no-names", path)
		var out bytes.Buffer
		cmd.Stdout = &out
		if err := cmd.Run(); err == nil {
			fields := strings.Fields(out.String())
			if len(fields) > 0 {
				return fields[0], nil
			}
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile duplicates contents and permission bits; the destination is
// overwritten when present and keeps the source's modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// warnIfLowSpace probes free space on the destination volume and warns
// when the artifact may not fit. Never fatal; the copy itself will report
// the real failure if one occurs.
func warnIfLowSpace(dir string, need int64) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		debugf("statfs %s: %v\n", dir, err)
		return
	}
	free := int64(st.Bavail) * st.Bsize
	if free < need {
		cPrintf(colWarn, "Low disk space on %s: %s bytes free, %s needed\n",
			dir, formatSize(free), formatSize(need))
	}
}

// copyArtifact moves the compiled binary to the stable output location and
// reports its size and checksum.
func copyArtifact(bc *BuildConfig) (ArtifactInfo, error) {
	src := compiledPath(bc)
	info, err := os.Stat(src)
	if err != nil {
		return ArtifactInfo{}, fmt.Errorf("%w: %s", errArtifactMissing, src)
	}

	if err := os.MkdirAll(bc.OutputDir, 0o755); err != nil {
		return ArtifactInfo{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	warnIfLowSpace(bc.OutputDir, info.Size())

	dst := artifactPath(bc)
	if err := copyFile(src, dst); err != nil {
		return ArtifactInfo{}, fmt.Errorf("failed to copy artifact: %w", err)
	}

	sum, err := hashFile(dst)
	if err != nil {
		return ArtifactInfo{}, fmt.Errorf("failed to checksum artifact: %w", err)
	}

	ai := ArtifactInfo{Path: dst, Size: info.Size(), B3Sum: sum}
	colArrow.Print("-> ")
	colSuccess.Printf("Binary copied to %s\n", ai.Path)
	fmt.Printf("Size: %s bytes\n", formatSize(ai.Size))
	fmt.Printf("BLAKE3: %s\n", ai.B3Sum)
	return ai, nil
}
