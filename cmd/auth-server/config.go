package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config はアプリケーション設定を保持する
type Config struct {
	// RADIUS設定
	ListenAddr   string `envconfig:"LISTEN_ADDR" default:":1812"`
	RadiusSecret string `envconfig:"RADIUS_SECRET"`

	// Valkey接続設定（未設定なら静的シークレットのみ）
	ValkeyAddr string `envconfig:"VALKEY_ADDR"`
	ValkeyPass string `envconfig:"VALKEY_PASS"`

	// 加入者API設定
	SubscriberAPIURL string `envconfig:"SUBSCRIBER_API_URL" required:"true"`
}

// Load は環境変数から設定を読み込む
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// validate は設定値のバリデーションを行う
func (c *Config) validate() error {
	if !strings.HasPrefix(c.SubscriberAPIURL, "http://") && !strings.HasPrefix(c.SubscriberAPIURL, "https://") {
		return fmt.Errorf("SUBSCRIBER_API_URL must start with http:// or https://")
	}
	return nil
}

// 加入者API接続設定
const (
	subscriberRequestTimeout = 5 * time.Second
)

// Circuit Breaker設定
const (
	cbName             = "subscriber-api"
	cbMaxRequests      = 3
	cbInterval         = 10 * time.Second
	cbTimeout          = 30 * time.Second
	cbFailureThreshold = 5
)

// サーバーシャットダウン設定
const (
	shutdownTimeout = 5 * time.Second
)
