// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "FOLDRUN"

// Config holds the collaborator endpoints and model settings that do not
// belong on the command line.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Search    SearchConfig    `mapstructure:"search"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Predictor PredictorConfig `mapstructure:"predictor"`
	Relax     RelaxConfig     `mapstructure:"relax"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SearchConfig configures alignment search. Command receives the request
// as JSON on stdin and answers with JSON on stdout.
type SearchConfig struct {
	Command   []string `mapstructure:"command"`
	CacheDir  string   `mapstructure:"cache_dir"`
	CacheSize int64    `mapstructure:"cache_size"`
}

type TemplatesConfig struct {
	Command []string `mapstructure:"command"`
}

type PredictorConfig struct {
	URL      string        `mapstructure:"url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Compress bool          `mapstructure:"compress"`
}

type RelaxConfig struct {
	Command []string `mapstructure:"command"`
}

type MetricsConfig struct {
	Addr string   `mapstructure:"addr"`
	Tags []string `mapstructure:"tags"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("search.command", []string{})
	v.SetDefault("search.cache_dir", "")
	v.SetDefault("search.cache_size", 256)
	v.SetDefault("templates.command", []string{})
	v.SetDefault("predictor.url", "")
	v.SetDefault("predictor.timeout", 30*time.Minute)
	v.SetDefault("predictor.compress", true)
	v.SetDefault("relax.command", []string{})
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.tags", []string{})
}

// Load reads path (YAML; optional) and applies FOLDRUN_* environment
// overrides, e.g. FOLDRUN_PREDICTOR_URL.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read the configuration file: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return c, nil
}
