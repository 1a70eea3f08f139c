package gpubuild

import (
	"errors"
	"fmt"
)

var (
	errDependencyMissing = errors.New("missing dependency")
	errArtifactMissing   = errors.New("artifact not found")
	errToolMissing       = errors.New("tool not found")
)

// Stage names used in failure reporting.
const (
	stageFormatCheck = "format check"
	stageFormatFix   = "format fix"
	stageLint        = "lint"
	stageCompile     = "compile"
	stageCompress    = "compress"
)

// StageError is a failed pipeline stage together with the diagnostics
// captured from the external command.
type StageError struct {
	Stage  string
	Reason string
	Stdout string
	Stderr string
}

func (e *StageError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s failed: %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("%s failed", e.Stage)
}

// reportStageError prints the captured diagnostics verbatim so the
// external tool's own messages reach the user unaltered.
func reportStageError(e *StageError) {
	cPrintf(colError, "%v\n", e)
	if e.Stderr != "" {
		fmt.Print(e.Stderr)
	}
	if e.Stdout != "" {
		fmt.Print(e.Stdout)
	}
}
