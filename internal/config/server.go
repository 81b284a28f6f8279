package config

import (
	"errors"
	"fmt"
)

const (
	defaultServerHost  = "0.0.0.0"
	defaultServerPort  = 8080
	defaultMetricsHost = "0.0.0.0"
	defaultMetricsPort = 2112
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (cfg *ServerConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("host is required")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return errors.New("port must be within 0-65535")
	}

	return nil
}

func (cfg *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

type MetricsConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (cfg *MetricsConfig) Validate() error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return errors.New("metrics port must be within 0-65535")
	}

	return nil
}

func (cfg *MetricsConfig) GetMetricsPort() int {
	return cfg.Port
}
