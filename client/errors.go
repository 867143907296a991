package client

import "errors"

// 送信エラー
var (
	// ErrNoFreeIdentifier はエンドポイントの256個の識別子が
	// すべて使用中の場合のエラー
	ErrNoFreeIdentifier = errors.New("no free identifier for endpoint")

	// ErrTimeout は全リトライ試行を使い切った場合のエラー
	ErrTimeout = errors.New("request timed out")

	// ErrEndpointBlacklisted はサーキットブレーカーが開いている
	// エンドポイントへの送信エラー
	ErrEndpointBlacklisted = errors.New("endpoint blacklisted")

	// ErrCancelled は呼び出し側がリクエストを取り消した場合のエラー
	ErrCancelled = errors.New("request cancelled")

	// ErrClientClosed はクライアントの停止後に送信した場合のエラー
	ErrClientClosed = errors.New("client closed")
)
