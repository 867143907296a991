package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// SubscriberClient は加入者APIへの認証問い合わせクライアント。
// APIが不安定な場合に備えてサーキットブレーカーを挟む。
type SubscriberClient struct {
	httpClient *resty.Client
	cb         *gobreaker.CircuitBreaker
}

// authRequest は加入者APIへの認証リクエストボディ
type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse は加入者APIからの認証レスポンスボディ
type authResponse struct {
	Allow bool `json:"allow"`
}

// NewSubscriberClient は新しいSubscriberClientを生成する。
func NewSubscriberClient(cfg *Config) *SubscriberClient {
	httpClient := resty.New().
		SetBaseURL(cfg.SubscriberAPIURL).
		SetTimeout(subscriberRequestTimeout)

	cbSettings := gobreaker.Settings{
		Name:        cbName,
		MaxRequests: cbMaxRequests,
		Interval:    cbInterval,
		Timeout:     cbTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cbFailureThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				"event_id", "CB_STATE",
				"cb_name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &SubscriberClient{
		httpClient: httpClient,
		cb:         gobreaker.NewCircuitBreaker(cbSettings),
	}
}

// Authenticate はユーザー名とパスワードの組を検証する。
// APIが到達不能・ブレーカー開放の場合はエラーを返す（認証拒否とは区別する）。
func (c *SubscriberClient) Authenticate(ctx context.Context, username, password string) (bool, error) {
	result, err := c.cb.Execute(func() (any, error) {
		var out authResponse
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetBody(&authRequest{Username: username, Password: password}).
			SetResult(&out).
			Post("/v1/authenticate")
		if err != nil {
			return nil, fmt.Errorf("subscriber API request failed: %w", err)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("subscriber API returned status %d", resp.StatusCode())
		}
		return out.Allow, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}
