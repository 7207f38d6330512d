package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Google struct {
		Key      string `mapstructure:"key"`
		Cx       string `mapstructure:"cx"`
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"google"`
	Bing struct {
		Key      string `mapstructure:"key"`
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"bing"`
	Server struct {
		Listen   string `mapstructure:"listen"`
		Database string `mapstructure:"database"`
	} `mapstructure:"server"`
	Auth struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"auth"`
	Debug struct {
		PrettyJson bool `mapstructure:"pretty_json"`
	} `mapstructure:"debug"`
	Log struct {
		Level  string `mapstructure:"level"`
		Pretty bool   `mapstructure:"pretty"`
	} `mapstructure:"log"`
}

// loadConfig reads conf/config.json if there is one. Every key can be
// overridden from the environment, e.g. IMGSEARCH_BING_KEY.
func loadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetDefault("google.key", "")
	v.SetDefault("google.cx", "")
	v.SetDefault("google.endpoint", "")
	v.SetDefault("bing.key", "")
	v.SetDefault("bing.endpoint", "")
	v.SetDefault("server.listen", ":8081")
	v.SetDefault("server.database", "data/imgsearch.db")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("debug.pretty_json", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix("IMGSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}
