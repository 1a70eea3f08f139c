package gpubuild

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
)

func printBanner(title string) {
	line := strings.Repeat("=", 50)
	colSuccess.Println(line)
	colSuccess.Println(title)
	colSuccess.Println(line)
}

func printVersion() {
	fmt.Printf("gpubuild %s (%s), built %s\n", version, arch, buildDate)
}

// Run is the CLI entry point. It returns the process exit code.
func Run(ctx context.Context, args []string) int {
	initColor()

	fs := flag.NewFlagSet("gpubuild", flag.ContinueOnError)
	clean := fs.Bool("clean", false, "Clean build output and exit")
	compressOnly := fs.Bool("compress-only", false, "Compress the existing binary and exit")
	withUPX := fs.Bool("with-upx", false, "Build, then compress the binary with UPX")
	archive := fs.Bool("archive", false, "Build, then pack the output into a tarball")
	upload := fs.Bool("upload", false, "Build, then publish artifacts to the configured R2 bucket")
	showVersion := fs.Bool("version", false, "Print version information and exit")
	fs.BoolVar(&Debug, "debug", false, "Enable debug output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion || (fs.NArg() > 0 && fs.Arg(0) == "version") {
		printVersion()
		return 0
	}

	rawCfg, err := loadConfig(ConfigFile)
	if err != nil {
		cPrintf(colError, "failed to read %s: %v\n", ConfigFile, err)
		return 1
	}
	bc, err := newBuildConfig(rawCfg)
	if err != nil {
		cPrintf(colError, "%v\n", err)
		return 1
	}

	env := BuildEnv(bc, os.Environ())
	exec := NewExecutor(ctx, env, bc.CommandTimeout)
	if Debug {
		for _, k := range []string{"ANDROID_NDK_HOME", "LLVM_PATH", "LIBCLANG_PATH", linkerEnvKey(bc.Target)} {
			for _, kv := range env {
				if strings.HasPrefix(kv, k+"=") {
					debugf("env: %s\n", kv)
				}
			}
		}
	}

	switch {
	case *clean:
		if err := cleanBuild(bc, exec); err != nil {
			cPrintf(colError, "%v\n", err)
		}
		return 0

	case *compressOnly:
		if _, err := compressArtifact(bc, exec); err != nil {
			reportFailure(err)
			return 1
		}
		return 0
	}

	// Default flow: build + copy, with optional post-processing steps.
	title := "GPU Governor build"
	if *withUPX {
		title = "GPU Governor build and compress"
	}
	printBanner(title)

	pipeline := NewPipeline(bc, exec)
	if err := pipeline.Run(); err != nil {
		reportFailure(err)
		return 1
	}
	if _, err := copyArtifact(bc); err != nil {
		reportFailure(err)
		return 1
	}

	// A failed compression or archive step after a successful build is
	// reported but does not fail the run; the binary itself is good.
	if *withUPX {
		if _, err := compressArtifact(bc, exec); err != nil {
			reportFailure(err)
			cPrintln(colWarn, "Compression failed, but the build succeeded")
		}
	}
	if *archive {
		if _, err := archiveArtifact(bc); err != nil {
			reportFailure(err)
			cPrintln(colWarn, "Archiving failed, but the build succeeded")
		}
	}

	if *upload {
		store, err := NewR2Client(bc)
		if err != nil {
			cPrintf(colError, "%v\n", err)
			return 1
		}
		if err := uploadArtifacts(ctx, bc, store); err != nil {
			cPrintf(colError, "%v\n", err)
			return 1
		}
	}

	printBanner("Build finished")
	return 0
}

func reportFailure(err error) {
	var se *StageError
	if errors.As(err, &se) {
		reportStageError(se)
		return
	}
	cPrintf(colError, "%v\n", err)
}
