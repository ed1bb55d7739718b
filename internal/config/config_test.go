package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brogergvhs/featsnap/internal/snapshot"
	"github.com/brogergvhs/featsnap/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"OUTPUT", "SOURCE_URL", "TIMEOUT", "USER_AGENT", "DEBUG", "NO_PROGRESS"} {
		t.Setenv("FEATSNAP_"+k, "")
		require.NoError(t, os.Unsetenv("FEATSNAP_"+k))
	}
	return dir
}

func TestLoadMergedDefaults(t *testing.T) {
	isolate(t)

	cfg, used, err := LoadMerged(Options{})
	require.NoError(t, err)
	assert.Contains(t, used, "default config in memory")
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, snapshot.DefaultPath, cfg.Output)
	assert.Equal(t, source.DefaultURL, cfg.SourceURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.True(t, cfg.Progress)
}

func TestLoadMergedPrecedence(t *testing.T) {
	isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)

	profile := DefaultConfig()
	profile.Output = "from-profile.json"
	profile.SourceURL = "https://profile.example/page"
	profile.Timeout = 30 * time.Second
	require.NoError(t, SaveYAML(profile, path))

	cfg, used, err := LoadMerged(Options{})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "from-profile.json", cfg.Output)
	assert.Equal(t, 30*time.Second, cfg.Timeout)

	t.Setenv("FEATSNAP_OUTPUT", "from-env.json")
	t.Setenv("FEATSNAP_TIMEOUT", "45s")
	t.Setenv("FEATSNAP_NO_PROGRESS", "true")

	cfg, _, err = LoadMerged(Options{})
	require.NoError(t, err)
	assert.Equal(t, "from-env.json", cfg.Output)
	assert.Equal(t, "https://profile.example/page", cfg.SourceURL)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.False(t, cfg.Progress)

	cfg, _, err = LoadMerged(Options{Output: "from-flag.json", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "from-flag.json", cfg.Output)
	assert.Equal(t, time.Second, cfg.Timeout)
}

func TestLoadMergedIgnoreConfig(t *testing.T) {
	isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	profile := DefaultConfig()
	profile.Output = "from-profile.json"
	require.NoError(t, SaveYAML(profile, path))

	cfg, used, err := LoadMerged(Options{IgnoreConfig: true, Debug: true})
	require.NoError(t, err)
	assert.Equal(t, "(ignored config)", used)
	assert.Equal(t, snapshot.DefaultPath, cfg.Output)
	assert.True(t, cfg.Debug)
}

func TestLoadMergedBadEnv(t *testing.T) {
	isolate(t)
	t.Setenv("FEATSNAP_TIMEOUT", "soon")

	_, _, err := LoadMerged(Options{IgnoreConfig: true})
	require.Error(t, err)
}

func TestLoadYAMLPartialProfile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: 2m\ndebug: true\n"), 0644))

	cfg, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.True(t, cfg.Debug)
	assert.Equal(t, snapshot.DefaultPath, cfg.Output)
}

func TestProfiles(t *testing.T) {
	isolate(t)

	_, err := ActiveConfigPath()
	assert.ErrorIs(t, err, ErrNoConfig)

	defPath, err := InitDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, ProfilePath(DefaultLabel), defPath)

	again, err := InitDefaultConfig()
	assert.ErrorIs(t, err, os.ErrExist)
	assert.Equal(t, defPath, again)

	_, err = CreateConfig("staging")
	require.NoError(t, err)
	_, err = CreateConfig("staging")
	assert.ErrorIs(t, err, ErrProfileExists)

	require.NoError(t, SwitchConfig("staging"))
	active, err := ActiveConfigPath()
	require.NoError(t, err)
	assert.Equal(t, ProfilePath("staging"), active)

	list, err := ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, DefaultLabel, list[0].Label)
	assert.False(t, list[0].Active)
	assert.Equal(t, "staging", list[1].Label)
	assert.True(t, list[1].Active)

	assert.ErrorIs(t, SwitchConfig("missing"), ErrProfileMissing)
	assert.ErrorIs(t, SwitchConfig("../escape"), ErrInvalidLabel)
	assert.ErrorIs(t, SwitchConfig(" "), ErrInvalidLabel)

	require.NoError(t, RemoveConfig("staging"))
	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, DefaultLabel, label)

	assert.Error(t, RemoveConfig(DefaultLabel))
	assert.ErrorIs(t, RemoveConfig("staging"), ErrProfileMissing)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Debug = true
	cfg.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, " -output: "+snapshot.DefaultPath)
	assert.Contains(t, out, " -timeout: 15s")
	assert.Contains(t, out, " -debug: true")
	assert.NotContains(t, out, "user_agent")
}
