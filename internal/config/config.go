package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the tipsight settings.
type Config struct {
	DataFile     string  `mapstructure:"data_file" yaml:"data_file"`
	OutputDir    string  `mapstructure:"output_dir" yaml:"output_dir"`
	ChartWidth   int     `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight  int     `mapstructure:"chart_height" yaml:"chart_height"`
	HistBinWidth float64 `mapstructure:"hist_bin_width" yaml:"hist_bin_width"`
	LogLevel     string  `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the built-in configuration used when no file or
// environment overrides are present.
func Default() *Config {
	return &Config{
		DataFile:     filepath.Join("data", "tips.csv"),
		OutputDir:    "output",
		ChartWidth:   1024,
		ChartHeight:  640,
		HistBinWidth: 2.5,
		LogLevel:     "info",
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.tipsight/config.yaml, creating the directory if
// necessary.
func Save(c *Config, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".tipsight")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TIPSIGHT")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("data_file", d.DataFile)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("chart_height", d.ChartHeight)
	v.SetDefault("hist_bin_width", d.HistBinWidth)
	v.SetDefault("log_level", d.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".tipsight"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
