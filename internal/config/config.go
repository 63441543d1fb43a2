// Package config loads webshell's configuration using the Viper library,
// the way the teacher shell's internal/config package does.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds user-configurable settings for the shell.
type Config struct {
	HistFile      string `mapstructure:"hist_file"`
	HistSize      int    `mapstructure:"hist_size"`
	ProfilePath   string `mapstructure:"profile_path"`
	StorePath     string `mapstructure:"store_path"`
	PromptTheme   string `mapstructure:"prompt_theme"`
	PromptText    string `mapstructure:"prompt_text"`
	Greeting      string `mapstructure:"greeting"`
	InterruptEcho string `mapstructure:"interrupt_echo"`
}

// Load reads configuration from a file named "config" in the current
// directory (any of Viper's supported formats). If reading or
// unmarshaling fails, an error is returned alongside Default()'s values.
func Load() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")

	cfg := Default()
	if err := viper.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("webshell: boot: failed to load config: %w", err)
	}
	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("webshell: boot: failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config populated with sensible defaults, used as a
// fallback when loading the configuration file fails.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		HistFile:      home + "/.webshell_history",
		HistSize:      100,
		ProfilePath:   ".profile",
		StorePath:     home + "/.webshell_store.json",
		PromptTheme:   "webshell",
		PromptText:    "$ ",
		Greeting:      "webshell — type a command\n",
		InterruptEcho: "^C",
	}
}
