package gpubuild

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
)

// archivePath is the tarball location for a given format.
func archivePath(bc *BuildConfig) string {
	return filepath.Join(bc.OutputDir,
		fmt.Sprintf("%s-%s.tar.%s", bc.BinaryName, bc.Target, bc.ArchiveFormat))
}

// newCompressedWriter wraps the output file in the configured compressor.
// The returned closer must be closed before the file to flush the stream.
func newCompressedWriter(f *os.File, format string) (io.WriteCloser, error) {
	switch format {
	case "gz":
		return pgzip.NewWriter(f), nil
	case "xz":
		return xz.NewWriter(f)
	case "zst":
		return zstd.NewWriter(f)
	}
	return nil, fmt.Errorf("unsupported archive format %q", format)
}

// archiveArtifact packs the copied artifact (and the compressed duplicate
// when present) into a distributable tarball beside them. The artifacts
// themselves are only read, never modified.
func archiveArtifact(bc *BuildConfig) (string, error) {
	members := []string{artifactPath(bc)}
	if _, err := os.Stat(members[0]); err != nil {
		return "", fmt.Errorf("%w: %s", errArtifactMissing, members[0])
	}
	if _, err := os.Stat(compressedPath(bc)); err == nil {
		members = append(members, compressedPath(bc))
	}

	tarballPath := archivePath(bc)
	outFile, err := os.Create(tarballPath)
	if err != nil {
		return "", fmt.Errorf("failed to create tarball file: %v", err)
	}
	defer outFile.Close()

	cw, err := newCompressedWriter(outFile, bc.ArchiveFormat)
	if err != nil {
		return "", err
	}

	tw := tar.NewWriter(cw)
	for _, member := range members {
		if err := addTarMember(tw, member); err != nil {
			tw.Close()
			cw.Close()
			os.Remove(tarballPath)
			return "", fmt.Errorf("failed to add %s to tarball: %v", member, err)
		}
	}
	if err := tw.Close(); err != nil {
		cw.Close()
		return "", err
	}
	if err := cw.Close(); err != nil {
		return "", err
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Archive created: %s\n", tarballPath)
	return tarballPath, nil
}

func addTarMember(tw *tar.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(path)

	// Distribution tarballs are portably root-owned.
	hdr.Uid, hdr.Gid = 0, 0
	hdr.Uname, hdr.Gname = "root", "root"

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}
