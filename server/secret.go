package server

import (
	"context"
	"log/slog"
	"net"

	"github.com/oyaguma3/go-radius/store"
)

// SecretSource は送信元アドレスから共有シークレットを解決する。
// nilシークレットを返した場合、そのデータグラムは破棄される。
type SecretSource interface {
	RADIUSSecret(ctx context.Context, remoteAddr net.Addr) ([]byte, error)
}

// StaticSecretSource は全送信元に同一のシークレットを返す。
type StaticSecretSource []byte

// RADIUSSecret は固定のシークレットを返す。
func (s StaticSecretSource) RADIUSSecret(_ context.Context, _ net.Addr) ([]byte, error) {
	return []byte(s), nil
}

// DynamicSecretSource はクライアント登録情報に基づいてシークレットを解決する。
// 解決順: 静的テーブル → ストア（Valkey） → フォールバック → nil。
type DynamicSecretSource struct {
	static      map[string][]byte
	clientStore store.ClientStore
	fallback    []byte
}

// NewDynamicSecretSource は新しいDynamicSecretSourceを生成する。
// clientStoreはnil可（ストア検索を行わない）。
// fallbackが空の場合、フォールバックは無効。
func NewDynamicSecretSource(clientStore store.ClientStore, fallback []byte) *DynamicSecretSource {
	return &DynamicSecretSource{
		static:      make(map[string][]byte),
		clientStore: clientStore,
		fallback:    fallback,
	}
}

// Register はIPアドレスに対する静的なシークレットを登録する。
// 起動時の設定読み込みで呼ばれる想定であり、RADIUSSecretとの
// 並行実行は考慮しない。
func (s *DynamicSecretSource) Register(ip string, secret []byte) {
	s.static[ip] = secret
}

// RADIUSSecret は送信元アドレスに対応するシークレットを返す。
func (s *DynamicSecretSource) RADIUSSecret(ctx context.Context, remoteAddr net.Addr) ([]byte, error) {
	ip := extractIP(remoteAddr)
	if ip == "" {
		return s.fallbackOrNil(), nil
	}

	if secret, ok := s.static[ip]; ok {
		return secret, nil
	}

	if s.clientStore != nil {
		secret, ok, err := s.clientStore.LookupSecret(ctx, ip)
		if err != nil {
			slog.Warn("client store lookup failed",
				"event_id", "SECRET_STORE_ERR",
				"src_ip", ip,
				"error", err,
			)
			return s.fallbackOrNil(), nil
		}
		if ok {
			return secret, nil
		}
	}

	return s.fallbackOrNil(), nil
}

func (s *DynamicSecretSource) fallbackOrNil() []byte {
	if len(s.fallback) > 0 {
		return s.fallback
	}
	return nil
}

// extractIP はnet.AddrからIPアドレス文字列を抽出する。
func extractIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	if udpAddr, ok := addr.(*net.UDPAddr); ok {
		return udpAddr.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return ""
	}
	return host
}
