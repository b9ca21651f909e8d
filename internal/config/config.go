// Package config resolves runtime settings from config.yaml, ANIPAHE_*
// environment variables and command-line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "ANIPAHE"
	AppName   = "anipahe"

	KeyBaseURL           = "base_url"
	KeyPageSize          = "page_size"
	KeyDebounce          = "debounce"
	KeyRequestTimeout    = "request_timeout"
	KeyRequestsPerSecond = "requests_per_second"
	KeyDataDir           = "data_dir"
	KeyDebug             = "debug"
	KeyDiscord           = "discord"

	DefaultBaseURL           = "http://127.0.0.1:8000"
	DefaultDebounce          = 250 * time.Millisecond
	DefaultRequestTimeout    = 15 * time.Second
	DefaultRequestsPerSecond = 10.0
)

// Config is the resolved application configuration.
type Config struct {
	BaseURL           string
	PageSize          int
	Debounce          time.Duration
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	DataDir           string
	Debug             bool
	Discord           bool
}

// DBPath is the sqlite file backing favorites and preferences.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, AppName+".db")
}

// LogPath is where the TUI writes its log.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, AppName+".log")
}

// DefaultDataDir is ~/.local/anipahe, or ./.anipahe without a home directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "." + AppName
	}
	return filepath.Join(home, ".local", AppName)
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyPageSize, models.DefaultPageSize)
	v.SetDefault(KeyDebounce, DefaultDebounce)
	v.SetDefault(KeyRequestTimeout, DefaultRequestTimeout)
	v.SetDefault(KeyRequestsPerSecond, DefaultRequestsPerSecond)
	v.SetDefault(KeyDataDir, DefaultDataDir())
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyDiscord, true)
}

// configDirs lists the search path for config.yaml, most specific first.
func configDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, AppName))
	} else if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, AppName))
	}
	return append(dirs, ".")
}

// Prepare loads an optional .env file, wires environment lookup and reads
// cfgFile, or config.yaml from the search path when cfgFile is empty. A
// missing default config file is not an error.
func Prepare(v *viper.Viper, cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range configDirs() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "read config")
	}
	return nil
}

// Load reads the resolved values from v. Out-of-range values are clamped
// rather than rejected; only an unusable base URL is an error.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		BaseURL:           strings.TrimRight(strings.TrimSpace(v.GetString(KeyBaseURL)), "/"),
		PageSize:          models.ClampPageSize(v.GetInt(KeyPageSize)),
		Debounce:          v.GetDuration(KeyDebounce),
		RequestTimeout:    v.GetDuration(KeyRequestTimeout),
		RequestsPerSecond: v.GetFloat64(KeyRequestsPerSecond),
		DataDir:           v.GetString(KeyDataDir),
		Debug:             v.GetBool(KeyDebug),
		Discord:           v.GetBool(KeyDiscord),
	}

	if cfg.BaseURL == "" {
		return nil, errors.Errorf("%s is required (set via config.yaml or %s_BASE_URL)", KeyBaseURL, EnvPrefix)
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, errors.Errorf("invalid %s: %q (must start with http:// or https://)", KeyBaseURL, cfg.BaseURL)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.RequestsPerSecond < 0 {
		cfg.RequestsPerSecond = 0
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	return cfg, nil
}
