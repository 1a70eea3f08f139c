package gpubuild

import (
	"fmt"
	"os"
)

// cleanBuild removes toolchain output and the copied artifacts. The
// external clean step is best-effort: it is logged on failure and never
// blocks removal of the output directory. Safe to call repeatedly.
func cleanBuild(bc *BuildConfig, exec *Executor) error {
	colArrow.Print("-> ")
	colSuccess.Println("Cleaning build output")

	if err := exec.Run("cargo", "clean"); err != nil {
		cPrintf(colWarn, "cargo clean failed: %v\n", err)
	} else {
		colArrow.Print("-> ")
		colSuccess.Println("cargo clean finished")
	}

	if _, err := os.Stat(bc.OutputDir); err == nil {
		if err := os.RemoveAll(bc.OutputDir); err != nil {
			return fmt.Errorf("failed to remove output directory: %w", err)
		}
		colArrow.Print("-> ")
		colSuccess.Printf("Output directory removed: %s\n", bc.OutputDir)
	}
	return nil
}
