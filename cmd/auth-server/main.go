// Package main はPAP認証を行うRADIUSサーバーのエントリーポイント。
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oyaguma3/go-radius/server"
	"github.com/oyaguma3/go-radius/store"
)

func main() {
	// 1. 環境変数読み込み
	cfg, err := Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. ロガー初期化（JSON形式、INFO以上）
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With("app", "auth-server")
	slog.SetDefault(logger)

	slog.Info("auth-server starting",
		"listen_addr", cfg.ListenAddr,
		"subscriber_api_url", cfg.SubscriberAPIURL,
	)

	// 3. Valkeyクライアント初期化（任意）
	var clientStore store.ClientStore
	if cfg.ValkeyAddr != "" {
		opts := store.DefaultOptions(cfg.ValkeyAddr)
		opts.Password = cfg.ValkeyPass
		vc, err := store.NewValkeyClient(opts)
		if err != nil {
			slog.Error("failed to connect to Valkey",
				"event_id", "VALKEY_CONN_ERR",
				"error", err,
			)
			os.Exit(1)
		}
		defer vc.Close()
		clientStore = store.NewClientStore(vc)
		slog.Info("valkey connected", "addr", cfg.ValkeyAddr)
	}

	// 4. RADIUS Secret解決
	secretSource := server.NewDynamicSecretSource(clientStore, []byte(cfg.RadiusSecret))

	// 5. 加入者APIクライアント
	backend := NewSubscriberClient(cfg)

	// 6. UDPサーバー
	srv := &server.PacketServer{
		Addr:         cfg.ListenAddr,
		Handler:      &authHandler{backend: backend},
		SecretSource: secretSource,
	}

	// 7. サーバー起動（goroutine）
	go func() {
		slog.Info("radius server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	// 8. シグナル待機 → Graceful Shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigCh
	slog.Info("signal received, shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("shutdown error", "error", err)
	}

	slog.Info("auth-server stopped")
}
