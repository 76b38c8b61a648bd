// Package config holds genome-track settings read through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/inodb/genome-track/internal/plot"
)

// FileName is the config file stored in the user's home directory.
const FileName = ".genome-track.yaml"

// EnvPrefix prefixes environment overrides, e.g. GENOME_TRACK_PLOT_WIDTH.
const EnvPrefix = "GENOME_TRACK"

// Config is the full set of user settings.
type Config struct {
	Plot  PlotConfig  `mapstructure:"plot"`
	Serve ServeConfig `mapstructure:"serve"`
	Log   LogConfig   `mapstructure:"log"`
	Store StoreConfig `mapstructure:"store"`
}

// PlotConfig holds figure layout defaults.
type PlotConfig struct {
	Height     int     `mapstructure:"height"`
	Width      int     `mapstructure:"width"`
	LabelAngle float64 `mapstructure:"label_angle"`
	FontSize   string  `mapstructure:"font_size"`
	Backend    string  `mapstructure:"backend"`
}

// ServeConfig holds viewer server settings.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StoreConfig holds the annotation store location. An empty path disables
// the store for render/patches/genes.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("plot.height", 150)
	v.SetDefault("plot.width", 800)
	v.SetDefault("plot.label_angle", 45.0)
	v.SetDefault("plot.font_size", "10pt")
	v.SetDefault("plot.backend", "svg")
	v.SetDefault("serve.addr", "localhost:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("store.path", "")
}

// Init points v at the config file and environment. A missing config file
// is not an error. An explicit cfgFile overrides ~/.genome-track.yaml.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Load unmarshals the current settings of v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &c, nil
}

// DefaultPath returns ~/.genome-track.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Options converts the plot settings to figure options.
func (p PlotConfig) Options() (plot.Options, error) {
	backend, err := plot.ParseBackend(p.Backend)
	if err != nil {
		return plot.Options{}, err
	}
	return plot.Options{
		Height:     p.Height,
		Width:      p.Width,
		LabelAngle: p.LabelAngle,
		FontSize:   p.FontSize,
		Backend:    backend,
	}, nil
}
