package gpubuild

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunVersion(t *testing.T) {
	assert.Zero(t, Run(context.Background(), []string{"--version"}))
}

func TestRunCompressOnlyMissingArtifact(t *testing.T) {
	chdir(t, t.TempDir())
	code := Run(context.Background(), []string{"--compress-only"})
	assert.Equal(t, 1, code, "compress-only against a missing artifact must fail the run")
}

func TestRunCleanAlwaysSucceeds(t *testing.T) {
	chdir(t, t.TempDir())
	assert.Zero(t, Run(context.Background(), []string{"--clean"}))
	assert.Zero(t, Run(context.Background(), []string{"--clean"}))
}

func TestRunUnknownFlag(t *testing.T) {
	assert.Equal(t, 2, Run(context.Background(), []string{"--bogus"}))
}
