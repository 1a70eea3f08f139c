package gpubuild

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds raw key=value settings from the conf file and environment.
type Config struct {
	Values map[string]string
}

// configDefaults are the built-in settings, overridable via gpubuild.conf
// and GPUBUILD_* environment variables.
var configDefaults = map[string]string{
	"NDK_HOME":       "/opt/android-ndk-r27c",
	"LLVM_PATH":      "/opt/llvm",
	"UPX_PATH":       "/usr/bin/upx",
	"TARGET":         "aarch64-linux-android",
	"BINARY":         "gpugovernor",
	"OUTPUT_DIR":     "output",
	"ARCHIVE_FORMAT": "gz",
}

// loadConfig reads the conf file (when present) over the built-in defaults
// and merges GPUBUILD_* environment overrides.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}
	for k, v := range configDefaults {
		cfg.Values[k] = v
	}

	// Attempt to read the file
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			val := strings.TrimSpace(parts[1])
			val = strings.Trim(val, `"'`)
			cfg.Values[key] = val
		}
		if err := scanner.Err(); err != nil {
			return cfg, err
		}
	}

	mergeEnvOverrides(cfg)
	return cfg, nil
}

// Merge GPUBUILD_* env overrides; GPUBUILD_NDK_HOME overrides NDK_HOME etc.
// R2_* credentials are taken from the environment as-is.
func mergeEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch {
		case strings.HasPrefix(parts[0], "GPUBUILD_"):
			cfg.Values[strings.TrimPrefix(parts[0], "GPUBUILD_")] = parts[1]
		case strings.HasPrefix(parts[0], "R2_"):
			cfg.Values[parts[0]] = parts[1]
		}
	}
}

// BuildConfig is the immutable per-run configuration. It is created once
// from a Config and never mutated afterwards.
type BuildConfig struct {
	NDKHome    string
	LLVMPath   string
	UPXPath    string
	Target     string
	BinaryName string
	OutputDir  string

	// Optional bound on each external command; zero means unbounded,
	// matching the historical behavior of the build script.
	CommandTimeout time.Duration

	ArchiveFormat string

	// R2 publishing credentials; empty unless configured.
	R2AccountID  string
	R2AccessKey  string
	R2SecretKey  string
	R2BucketName string
}

// newBuildConfig derives the typed, quote-sanitized run configuration.
func newBuildConfig(cfg *Config) (*BuildConfig, error) {
	bc := &BuildConfig{
		NDKHome:       sanitizeValue(cfg.Values["NDK_HOME"]),
		LLVMPath:      sanitizeValue(cfg.Values["LLVM_PATH"]),
		UPXPath:       sanitizeValue(cfg.Values["UPX_PATH"]),
		Target:        sanitizeValue(cfg.Values["TARGET"]),
		BinaryName:    sanitizeValue(cfg.Values["BINARY"]),
		OutputDir:     sanitizeValue(cfg.Values["OUTPUT_DIR"]),
		ArchiveFormat: cfg.Values["ARCHIVE_FORMAT"],
		R2AccountID:   cfg.Values["R2_ACCOUNT_ID"],
		R2AccessKey:   cfg.Values["R2_ACCESS_KEY_ID"],
		R2SecretKey:   cfg.Values["R2_SECRET_ACCESS_KEY"],
		R2BucketName:  cfg.Values["R2_BUCKET_NAME"],
	}

	if raw := cfg.Values["COMMAND_TIMEOUT"]; raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid COMMAND_TIMEOUT %q: %w", raw, err)
		}
		bc.CommandTimeout = d
	}

	switch bc.ArchiveFormat {
	case "gz", "xz", "zst":
	default:
		return nil, fmt.Errorf("invalid ARCHIVE_FORMAT %q (want gz, xz or zst)", bc.ArchiveFormat)
	}
	return bc, nil
}
