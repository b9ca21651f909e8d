package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10.0, cfg.RequestsPerSecond)
	assert.True(t, cfg.Discord)
	assert.False(t, cfg.Debug)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoad_ClampsAndValidates(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyPageSize, 1000)
	v.Set(KeyDebounce, "-1s")
	v.Set(KeyBaseURL, "http://backend:9000/")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, DefaultDebounce, cfg.Debounce)
	assert.Equal(t, "http://backend:9000", cfg.BaseURL)

	v.Set(KeyPageSize, 0)
	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.PageSize)

	v.Set(KeyBaseURL, "backend:9000")
	_, err = Load(v)
	assert.Error(t, err)
}

func TestPrepare_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("page_size: 50\ndebounce: 100ms\ndata_dir: "+dir+"\n"), 0o600))
	t.Setenv("ANIPAHE_DISCORD", "false")

	v := viper.New()
	require.NoError(t, Prepare(v, file))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Debounce)
	assert.False(t, cfg.Discord)
	assert.Equal(t, filepath.Join(dir, "anipahe.db"), cfg.DBPath())
	assert.Equal(t, filepath.Join(dir, "anipahe.log"), cfg.LogPath())
}

func TestPrepare_MissingDefaultFileIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, Prepare(viper.New(), ""))

	err := Prepare(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")
}
