package server

import "errors"

// 受信処理エラー。いずれも応答なし（データグラム破棄）として扱われ、
// プロセスを停止させることはない。
var (
	// ErrUnknownSecret は送信元アドレスに対応する共有シークレットを
	// 解決できない場合のエラー
	ErrUnknownSecret = errors.New("unknown shared secret for source")

	// ErrServerClosed は停止後のサーバーに対する操作エラー
	ErrServerClosed = errors.New("server closed")
)
