package gpubuild

import (
	"fmt"
	"os"
)

type dependency struct {
	Path  string
	Label string
}

// buildDependencies lists the toolchain locations that must exist before
// any build step runs. Existence on disk is sufficient.
func buildDependencies(bc *BuildConfig) []dependency {
	return []dependency{
		{bc.NDKHome, "Android NDK"},
		{bc.LLVMPath, "LLVM"},
		{bc.UPXPath, "UPX"},
	}
}

// checkDependencies inspects every dependency and returns all missing
// entries, not just the first, so the user can fix them in one pass.
func checkDependencies(deps []dependency) []string {
	var missing []string
	for _, d := range deps {
		if _, err := os.Stat(d.Path); err != nil {
			missing = append(missing, fmt.Sprintf("%s: %s", d.Label, d.Path))
		}
	}
	return missing
}
