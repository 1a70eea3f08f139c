package gpubuild

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// The NDK ships its clang wrappers under this prebuilt directory; the
// wrapper name encodes the minimum Android API level.
const (
	ndkPrebuiltRel = "toolchains/llvm/prebuilt/linux-x86_64"
	androidAPI     = "33"
)

// sanitizeValue strips quote characters that corrupt argument and
// environment parsing when they leak into tool invocations.
func sanitizeValue(s string) string {
	s = strings.ReplaceAll(s, `"`, "")
	return strings.ReplaceAll(s, `'`, "")
}

// linkerEnvKey returns the cargo linker variable for a target triple,
// e.g. CARGO_TARGET_AARCH64_LINUX_ANDROID_LINKER.
func linkerEnvKey(target string) string {
	return "CARGO_TARGET_" + strings.ToUpper(strings.ReplaceAll(target, "-", "_")) + "_LINKER"
}

// buildOverlay derives the cross-toolchain variables from the run
// configuration. Every value is sanitized; PATH extends the (sanitized)
// inherited value rather than replacing it.
func buildOverlay(bc *BuildConfig, basePath string) map[string]string {
	prebuilt := filepath.Join(bc.NDKHome, ndkPrebuiltRel)

	overlay := map[string]string{
		"ANDROID_NDK_HOME": bc.NDKHome,
		"LLVM_PATH":        bc.LLVMPath,
		"LIBCLANG_PATH":    filepath.Join(bc.LLVMPath, "bin"),
	}
	overlay[linkerEnvKey(bc.Target)] = filepath.Join(prebuilt, "bin", bc.Target+androidAPI+"-clang")
	overlay["BINDGEN_EXTRA_CLANG_ARGS"] = fmt.Sprintf("--target=%s -I%s",
		bc.Target, filepath.Join(prebuilt, "sysroot/usr/include"))

	pathParts := []string{
		filepath.Join(bc.LLVMPath, "bin"),
		filepath.Join(prebuilt, "bin"),
	}
	if base := sanitizeValue(basePath); base != "" {
		pathParts = append(pathParts, base)
	}
	overlay["PATH"] = strings.Join(pathParts, string(os.PathListSeparator))

	for k, v := range overlay {
		overlay[k] = sanitizeValue(v)
	}
	return overlay
}

// BuildEnv renders the full process environment for external commands:
// the base environment with every value sanitized, with the toolchain
// overlay merged on top. The result is passed to each spawned command
// instead of mutating the orchestrator's own environment.
func BuildEnv(bc *BuildConfig, base []string) []string {
	merged := make(map[string]string, len(base))
	for _, kv := range base {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		merged[parts[0]] = sanitizeValue(parts[1])
	}

	for k, v := range buildOverlay(bc, merged["PATH"]) {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}
