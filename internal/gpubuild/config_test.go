package gpubuild

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.conf"))
	require.NoError(t, err)
	assert.Equal(t, "aarch64-linux-android", cfg.Values["TARGET"])
	assert.Equal(t, "gpugovernor", cfg.Values["BINARY"])
	assert.Equal(t, "output", cfg.Values["OUTPUT_DIR"])
}

func TestLoadConfigFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpubuild.conf")
	conf := `# toolchain locations
NDK_HOME = "/custom/ndk"
UPX_PATH=/custom/upx

LLVM_PATH='/custom/llvm'
malformed line without equals
`
	require.NoError(t, os.WriteFile(path, []byte(conf), 0o644))
	t.Setenv("GPUBUILD_TARGET", "x86_64-linux-android")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/custom/ndk", cfg.Values["NDK_HOME"], "conf values are unquoted")
	assert.Equal(t, "/custom/llvm", cfg.Values["LLVM_PATH"])
	assert.Equal(t, "/custom/upx", cfg.Values["UPX_PATH"])
	assert.Equal(t, "x86_64-linux-android", cfg.Values["TARGET"], "env override wins")
}

func TestNewBuildConfig(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.conf"))
	require.NoError(t, err)
	cfg.Values["NDK_HOME"] = `"/opt/ndk"`
	cfg.Values["COMMAND_TIMEOUT"] = "15m"

	bc, err := newBuildConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "/opt/ndk", bc.NDKHome, "values are sanitized at load time")
	assert.Equal(t, 15*time.Minute, bc.CommandTimeout)
}

func TestNewBuildConfigRejectsBadValues(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.conf"))
	require.NoError(t, err)

	cfg.Values["COMMAND_TIMEOUT"] = "soon"
	_, err = newBuildConfig(cfg)
	assert.ErrorContains(t, err, "COMMAND_TIMEOUT")

	cfg.Values["COMMAND_TIMEOUT"] = ""
	cfg.Values["ARCHIVE_FORMAT"] = "rar"
	_, err = newBuildConfig(cfg)
	assert.ErrorContains(t, err, "ARCHIVE_FORMAT")
}
