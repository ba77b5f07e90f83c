package main

import (
	"fmt"
	"runtime"

	"github.com/go-gum/tagged/internal/feed"
	"github.com/spf13/viper"
)

// Config holds the settings of the tagdecode command. Values are read from an optional
// config file and from environment variables prefixed with TAGDECODE_, command line flags
// take precedence over both.
type Config struct {
	// Field names the member holding the record collection. Empty for documents
	// that are a collection themselves.
	Field string `mapstructure:"FIELD"`

	// Discriminator names the member of each record holding its type.
	Discriminator string `mapstructure:"DISCRIMINATOR"`

	// Workers limits the number of files decoded in parallel.
	Workers int `mapstructure:"WORKERS"`

	// Validate enables validation of decoded messages.
	Validate bool `mapstructure:"VALIDATE"`
}

// LoadConfig reads the configuration from path, if not empty, and the environment.
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("FIELD", "messages")
	v.SetDefault("DISCRIMINATOR", feed.DefaultField)
	v.SetDefault("WORKERS", runtime.GOMAXPROCS(0))
	v.SetDefault("VALIDATE", true)

	v.SetEnvPrefix("TAGDECODE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if config.Workers < 1 {
		config.Workers = 1
	}

	return config, nil
}
