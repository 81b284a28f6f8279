package config

import (
	"errors"
	"time"
)

const defaultPublishTimeout = 5 * time.Second

// QueueConfig configures the RabbitMQ snapshot fan-out
type QueueConfig struct {
	URL            string        `mapstructure:"url"`
	Exchange       string        `mapstructure:"exchange"`
	PublishTimeout time.Duration `mapstructure:"publish-timeout"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.URL == "" {
		return errors.New("url is required")
	}
	if cfg.Exchange == "" {
		return errors.New("exchange is required")
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}

	return nil
}
