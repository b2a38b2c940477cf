package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DefaultSweepToken guards the sweep trigger when INACTIVITY_CHECK_TOKEN
// is unset. A documented weak default: main logs a warning when it is in
// use.
const DefaultSweepToken = "dev-inactivity-token"

type Config struct {
	Mode string `mapstructure:"mode"`
	Port int    `mapstructure:"port"`

	PusherAppID   string `mapstructure:"pusher_app_id"`
	PusherKey     string `mapstructure:"pusher_key"`
	PusherSecret  string `mapstructure:"pusher_secret"`
	PusherCluster string `mapstructure:"pusher_cluster"`

	SweepToken    string        `mapstructure:"inactivity_check_token"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	// Empty RedisURL disables rate limiting rather than failing closed.
	RedisURL  string `mapstructure:"redis_url"`
	RateLimit int    `mapstructure:"rate_limit"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("pusher_app_id", "")
	v.SetDefault("pusher_key", "")
	v.SetDefault("pusher_secret", "")
	v.SetDefault("pusher_cluster", "mt1")
	v.SetDefault("inactivity_check_token", DefaultSweepToken)
	v.SetDefault("sweep_interval", "60s")
	v.SetDefault("redis_url", "")
	v.SetDefault("rate_limit", 20)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.PusherAppID == "" || cfg.PusherKey == "" || cfg.PusherSecret == "" {
		return nil, fmt.Errorf("PUSHER_APP_ID, PUSHER_KEY and PUSHER_SECRET must be set")
	}
	return &cfg, nil
}
