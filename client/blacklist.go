package client

import (
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// blacklist はエンドポイントごとのサーキットブレーカー集合。
// 連続失敗数が閾値に達するとTTLの間そのエンドポイントへの送信を
// 即時に失敗させる。成功で失敗カウントは消える。
// 非同期の完了を扱うためTwoStepCircuitBreakerを使う: 送信許可時に
// 受け取ったdoneコールバックを完了時（成功/失敗）に呼ぶ。
type blacklist struct {
	mu        sync.Mutex
	ttl       time.Duration
	threshold uint32
	breakers  map[string]*gobreaker.TwoStepCircuitBreaker
}

func newBlacklist(ttl time.Duration, threshold uint32) *blacklist {
	return &blacklist{
		ttl:       ttl,
		threshold: threshold,
		breakers:  make(map[string]*gobreaker.TwoStepCircuitBreaker),
	}
}

// allow はエンドポイントへの送信可否を判定する。
// ブレーカーが開いている場合はErrEndpointBlacklistedを返す。
// 許可された場合、返されるdoneを完了結果とともに必ず呼ぶこと。
func (b *blacklist) allow(endpoint string) (func(success bool), error) {
	b.mu.Lock()
	cb := b.breakers[endpoint]
	if cb == nil {
		cb = gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
			Name:        endpoint,
			MaxRequests: 1,
			Timeout:     b.ttl,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= b.threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				switch to {
				case gobreaker.StateOpen:
					slog.Warn("endpoint blacklisted",
						"event_id", "CB_OPEN",
						"endpoint", name,
					)
				case gobreaker.StateHalfOpen:
					slog.Info("endpoint blacklist expired, probing",
						"event_id", "CB_HALF_OPEN",
						"endpoint", name,
					)
				case gobreaker.StateClosed:
					slog.Info("endpoint recovered",
						"event_id", "CB_CLOSE",
						"endpoint", name,
					)
				}
			},
		})
		b.breakers[endpoint] = cb
	}
	b.mu.Unlock()

	done, err := cb.Allow()
	if err != nil {
		// ErrOpenState / ErrTooManyRequests のいずれも送信抑止として扱う
		return nil, ErrEndpointBlacklisted
	}
	return done, nil
}
