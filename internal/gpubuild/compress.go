package gpubuild

import (
	"fmt"
	"os"
)

// CompressionReport describes the artifact pair left on disk after a
// successful compression.
type CompressionReport struct {
	OriginalPath   string
	CompressedPath string
	OriginalSize   int64
	CompressedSize int64
}

// Ratio is the compressed size as a percentage of the original.
func (r CompressionReport) Ratio() float64 {
	return compressionRatio(r.OriginalSize, r.CompressedSize)
}

func compressionRatio(original, compressed int64) float64 {
	if original == 0 {
		return 0
	}
	return float64(compressed) / float64(original) * 100
}

// compressedPath is the sibling location of the compressed duplicate.
func compressedPath(bc *BuildConfig) string {
	return artifactPath(bc) + "_compressed"
}

// compressArtifact produces a UPX-compressed duplicate of the artifact.
// The original is never touched: the compressor only ever runs against a
// copy, and a failed compression removes that copy so nothing misleading
// is left behind.
func compressArtifact(bc *BuildConfig, exec *Executor) (CompressionReport, error) {
	binaryPath := artifactPath(bc)
	info, err := os.Stat(binaryPath)
	if err != nil {
		return CompressionReport{}, fmt.Errorf("%w: %s", errArtifactMissing, binaryPath)
	}
	if _, err := os.Stat(bc.UPXPath); err != nil {
		return CompressionReport{}, fmt.Errorf("%w: UPX at %s", errToolMissing, bc.UPXPath)
	}

	cPrintf(colInfo, "Size before compression: %s bytes\n", formatSize(info.Size()))

	duplicate := compressedPath(bc)
	if err := copyFile(binaryPath, duplicate); err != nil {
		return CompressionReport{}, fmt.Errorf("failed to duplicate artifact: %w", err)
	}
	colArrow.Print("-> ")
	colSuccess.Printf("Created duplicate for compression: %s\n", duplicate)

	announce(bc.UPXPath, "--lzma", duplicate)
	res, err := exec.Capture(bc.UPXPath, "--lzma", duplicate)
	if err != nil {
		if rmErr := os.Remove(duplicate); rmErr != nil && !os.IsNotExist(rmErr) {
			cPrintf(colWarn, "failed to remove duplicate %s: %v\n", duplicate, rmErr)
		}
		return CompressionReport{}, &StageError{
			Stage:  stageCompress,
			Stdout: res.Stdout,
			Stderr: res.Stderr,
		}
	}

	compressedInfo, err := os.Stat(duplicate)
	if err != nil {
		return CompressionReport{}, fmt.Errorf("compressed artifact vanished: %w", err)
	}

	report := CompressionReport{
		OriginalPath:   binaryPath,
		CompressedPath: duplicate,
		OriginalSize:   info.Size(),
		CompressedSize: compressedInfo.Size(),
	}
	colArrow.Print("-> ")
	colSuccess.Println("UPX compression succeeded")
	cPrintf(colInfo, "Size after compression: %s bytes (%.2f%% of original)\n",
		formatSize(report.CompressedSize), report.Ratio())
	fmt.Printf("Original left untouched: %s\n", report.OriginalPath)
	fmt.Printf("Compressed copy: %s\n", report.CompressedPath)
	return report, nil
}
