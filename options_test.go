package waterfall

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── defaults ──────────────────────────────────────────────────────────────────

// TestBuildSettings_Defaults verifies the built-in resource names and
// working directory.
func TestBuildSettings_Defaults(t *testing.T) {
	s, err := buildSettings(nil)
	require.NoError(t, err)

	assert.Equal(t, "config/common.yaml", s.CommonResource)
	assert.Equal(t, "config/application.yaml", s.AppResource)
	assert.Equal(t, ".", s.WorkDir)
	assert.NotNil(t, s.Resources)
	assert.NotNil(t, s.Logger)
}

// ── environment layer ─────────────────────────────────────────────────────────

// TestBuildSettings_EnvOverridesDefaults verifies that WATERFALL_-prefixed
// variables shadow the defaults.
func TestBuildSettings_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("WATERFALL_COMMON_RESOURCE", "config/base.yaml")
	t.Setenv("WATERFALL_WORK_DIR", "/tmp")

	s, err := buildSettings(nil)
	require.NoError(t, err)

	assert.Equal(t, "config/base.yaml", s.CommonResource)
	assert.Equal(t, "/tmp", s.WorkDir)
	assert.Equal(t, "config/application.yaml", s.AppResource)
}

// ── options layer ─────────────────────────────────────────────────────────────

// TestBuildSettings_OptionsWinOverEnv verifies the full precedence:
// functional options beat the environment, which beats defaults.
func TestBuildSettings_OptionsWinOverEnv(t *testing.T) {
	t.Setenv("WATERFALL_APP_RESOURCE", "config/from-env.yaml")

	s, err := buildSettings([]Option{
		WithAppResource("config/from-option.yaml"),
		WithWorkDir("/srv/app"),
	})
	require.NoError(t, err)

	assert.Equal(t, "config/from-option.yaml", s.AppResource)
	assert.Equal(t, "/srv/app", s.WorkDir)
}

// TestBuildSettings_ResourcesOption verifies that a supplied resource
// filesystem is kept as-is instead of the working-directory default.
func TestBuildSettings_ResourcesOption(t *testing.T) {
	fsys := fstest.MapFS{"config/common.yaml": &fstest.MapFile{}}

	s, err := buildSettings([]Option{WithResources(fsys)})
	require.NoError(t, err)

	assert.Equal(t, fsys, s.Resources)
}

// TestBuildSettings_EmptyArgsSuppressCommandLine verifies that an explicit
// empty command line is honored rather than refilled from os.Args.
func TestBuildSettings_EmptyArgsSuppressCommandLine(t *testing.T) {
	s, err := buildSettings([]Option{WithArgs([]string{})})
	require.NoError(t, err)

	assert.Empty(t, s.Args)
}

// TestBuildSettings_PropertiesAndArgs verifies pass-through of the
// process-property inputs.
func TestBuildSettings_PropertiesAndArgs(t *testing.T) {
	s, err := buildSettings([]Option{
		WithProperties(map[string]string{"k": "v"}),
		WithArgs([]string{"-Dk2=v2"}),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"k": "v"}, s.Properties)
	assert.Equal(t, []string{"-Dk2=v2"}, s.Args)
}
