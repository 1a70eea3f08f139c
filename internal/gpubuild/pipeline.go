package gpubuild

import (
	"fmt"
	"strings"
)

// pipelineState tracks progress through the build sequence. Transitions
// are strictly ordered; the only branch is the single format remediation
// attempt, which is deliberately not a general retry mechanism.
type pipelineState int

const (
	stateInit pipelineState = iota
	stateDepsChecked
	stateFormatChecked
	stateFormatFixed
	stateLintChecked
	stateCompiled
	stateDone
	stateFailed
)

func (s pipelineState) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateDepsChecked:
		return "deps-checked"
	case stateFormatChecked:
		return "format-checked"
	case stateFormatFixed:
		return "format-fixed"
	case stateLintChecked:
		return "lint-checked"
	case stateCompiled:
		return "compiled"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// Pipeline sequences the verification and compilation stages against the
// external cargo toolchain.
type Pipeline struct {
	cfg   *BuildConfig
	state pipelineState

	// runCommand is the external command entry point; tests substitute it
	// to drive the state machine without a toolchain on disk.
	runCommand func(name string, args ...string) (CommandResult, error)
}

func NewPipeline(cfg *BuildConfig, exec *Executor) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		state:      stateInit,
		runCommand: exec.Capture,
	}
}

// State reports the pipeline's last reached state.
func (p *Pipeline) State() pipelineState { return p.state }

func (p *Pipeline) fail(err error) error {
	p.state = stateFailed
	return err
}

func announce(name string, args ...string) {
	colArrow.Print("-> ")
	colSuccess.Printf("Running: %s %s\n", name, strings.Join(args, " "))
}

// Run drives the stage sequence: dependency check, format check with a
// single remediation attempt, lint with warnings fatal, release compile.
// It halts at the first unrecoverable failure.
func (p *Pipeline) Run() error {
	// 1. Dependencies. Fatal, no retry; all missing entries are reported
	// before halting so the user can fix everything at once.
	if missing := checkDependencies(buildDependencies(p.cfg)); len(missing) > 0 {
		cPrintln(colError, "The following dependencies were not found:")
		for _, dep := range missing {
			cPrintf(colError, "  - %s\n", dep)
		}
		return p.fail(fmt.Errorf("%w: %d unresolved", errDependencyMissing, len(missing)))
	}
	p.state = stateDepsChecked
	colArrow.Print("-> ")
	colSuccess.Println("All dependencies found")

	// 2. Format check with one remediation attempt.
	if err := p.runFormatStage(); err != nil {
		return p.fail(err)
	}

	// 3. Lint, warnings fatal. No remediation path here.
	announce("cargo", "clippy", "--", "-D", "warnings")
	res, err := p.runCommand("cargo", "clippy", "--", "-D", "warnings")
	if err != nil {
		return p.fail(&StageError{
			Stage:  stageLint,
			Reason: "fix the reported warnings and errors",
			Stdout: res.Stdout,
			Stderr: res.Stderr,
		})
	}
	p.state = stateLintChecked
	colArrow.Print("-> ")
	colSuccess.Println("Lint check passed")

	// 4. Release cross-compile.
	announce("cargo", "build", "--release", "--target", p.cfg.Target)
	res, err = p.runCommand("cargo", "build", "--release", "--target", p.cfg.Target)
	if err != nil {
		return p.fail(&StageError{
			Stage:  stageCompile,
			Stdout: res.Stdout,
			Stderr: res.Stderr,
		})
	}
	p.state = stateCompiled
	colArrow.Print("-> ")
	colSuccess.Println("Compilation succeeded")
	if res.Stdout != "" {
		fmt.Print(res.Stdout)
	}

	p.state = stateDone
	return nil
}

// runFormatStage verifies formatting, auto-formats once on failure and
// verifies again. A failing recheck is terminal: formatting then needs a
// manual fix and the remediation is never repeated.
func (p *Pipeline) runFormatStage() error {
	announce("cargo", "fmt", "--check")
	res, err := p.runCommand("cargo", "fmt", "--check")
	if err == nil {
		p.state = stateFormatChecked
		colArrow.Print("-> ")
		colSuccess.Println("Format check passed")
		return nil
	}

	cPrintln(colWarn, "Format check failed, attempting to auto-format")
	if res.Stderr != "" {
		fmt.Print(res.Stderr)
	}

	announce("cargo", "fmt")
	fixRes, err := p.runCommand("cargo", "fmt")
	if err != nil {
		return &StageError{
			Stage:  stageFormatFix,
			Reason: "auto-format did not complete",
			Stdout: fixRes.Stdout,
			Stderr: fixRes.Stderr,
		}
	}
	if fixRes.Stdout != "" {
		fmt.Print(fixRes.Stdout)
	}

	announce("cargo", "fmt", "--check")
	recheck, err := p.runCommand("cargo", "fmt", "--check")
	if err != nil {
		return &StageError{
			Stage:  stageFormatCheck,
			Reason: "manual formatting required, run 'cargo fmt' and inspect the diff",
			Stdout: recheck.Stdout,
			Stderr: recheck.Stderr,
		}
	}
	p.state = stateFormatFixed
	colArrow.Print("-> ")
	colSuccess.Println("Auto-format fixed the formatting")
	return nil
}
