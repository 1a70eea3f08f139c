package gpubuild

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is a stand-in for testing.T.Chdir, which needs Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func testBuildConfig() *BuildConfig {
	return &BuildConfig{
		NDKHome:       "/opt/android-ndk-r27c",
		LLVMPath:      "/opt/llvm",
		UPXPath:       "/usr/bin/upx",
		Target:        "aarch64-linux-android",
		BinaryName:    "gpugovernor",
		OutputDir:     "output",
		ArchiveFormat: "gz",
	}
}

func TestSanitizeValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "/opt/llvm", "/opt/llvm"},
		{"double quotes", `"/opt/llvm"`, "/opt/llvm"},
		{"single quotes", "'/opt/llvm'", "/opt/llvm"},
		{"embedded", `/opt/"llvm"/bin`, "/opt/llvm/bin"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeValue(tt.in))
		})
	}
}

func TestLinkerEnvKey(t *testing.T) {
	assert.Equal(t, "CARGO_TARGET_AARCH64_LINUX_ANDROID_LINKER",
		linkerEnvKey("aarch64-linux-android"))
}

func TestBuildEnvContainsNoQuotes(t *testing.T) {
	bc := testBuildConfig()
	bc.NDKHome = `"/opt/android-ndk-r27c"`
	bc.LLVMPath = `/opt/'llvm'`

	base := []string{
		`PATH="/usr/local/bin":/usr/bin`,
		`CUSTOM_DIR='/home/user/dir'`,
	}
	env := BuildEnv(bc, base)
	require.NotEmpty(t, env)
	for _, kv := range env {
		assert.NotContains(t, kv, `"`, "env entry %q carries a double quote", kv)
		assert.NotContains(t, kv, `'`, "env entry %q carries a single quote", kv)
	}
}

func TestBuildEnvOverlay(t *testing.T) {
	bc := testBuildConfig()
	env := BuildEnv(bc, []string{"PATH=/usr/bin", "HOME=/home/user"})

	byKey := make(map[string]string, len(env))
	for _, kv := range env {
		parts := strings.SplitN(kv, "=", 2)
		require.Len(t, parts, 2)
		byKey[parts[0]] = parts[1]
	}

	assert.Equal(t, "/opt/android-ndk-r27c", byKey["ANDROID_NDK_HOME"])
	assert.Equal(t, "/opt/llvm", byKey["LLVM_PATH"])
	assert.Equal(t, "/opt/llvm/bin", byKey["LIBCLANG_PATH"])
	assert.Equal(t,
		"/opt/android-ndk-r27c/toolchains/llvm/prebuilt/linux-x86_64/bin/aarch64-linux-android33-clang",
		byKey["CARGO_TARGET_AARCH64_LINUX_ANDROID_LINKER"])
	assert.Equal(t,
		"--target=aarch64-linux-android -I/opt/android-ndk-r27c/toolchains/llvm/prebuilt/linux-x86_64/sysroot/usr/include",
		byKey["BINDGEN_EXTRA_CLANG_ARGS"])

	// New toolchain directories are prepended, the inherited PATH is kept.
	assert.Equal(t,
		"/opt/llvm/bin:/opt/android-ndk-r27c/toolchains/llvm/prebuilt/linux-x86_64/bin:/usr/bin",
		byKey["PATH"])

	// Unrelated base variables survive the merge.
	assert.Equal(t, "/home/user", byKey["HOME"])
}
