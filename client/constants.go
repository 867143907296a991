package client

import "time"

// リトライ設定のデフォルト値
const (
	// DefaultRetries は1リクエストあたりの送信試行回数
	DefaultRetries = 3
	// DefaultRetryInterval は再送間隔
	DefaultRetryInterval = 3 * time.Second
)

// サーキットブレーカー設定のデフォルト値
const (
	// DefaultBlacklistTTL は閾値到達後の送信抑止時間
	DefaultBlacklistTTL = 60 * time.Second
	// DefaultFailCountThreshold はブラックリスト入りとなる連続失敗数
	DefaultFailCountThreshold = 3
)
