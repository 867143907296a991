package client

import (
	"sync"
	"time"

	"github.com/oyaguma3/go-radius/packet"
)

// Pending は送信済みリクエストの完了を表すワンショットのfuture。
// 応答受信・タイムアウト・取り消し・クライアント停止のいずれかで
// ちょうど一度だけ解決される。
type Pending struct {
	once   sync.Once
	done   chan struct{}
	resp   *packet.Packet
	err    error
	cancel func()
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Done は解決時にクローズされるチャネルを返す。
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result は解決までブロックし、応答パケットまたはエラーを返す。
func (p *Pending) Result() (*packet.Packet, error) {
	<-p.done
	return p.resp, p.err
}

// Cancel はリクエストを取り消す。識別子の返却・ペンディング表からの
// 除去・タイマー停止を行い、ErrCancelledで解決する。
// 取り消し後に届いた応答は黙って破棄される。
func (p *Pending) Cancel() {
	if p.cancel != nil {
		p.cancel()
	}
}

// complete はfutureを解決する。2回目以降の呼び出しは無視される。
func (p *Pending) complete(resp *packet.Packet, err error) {
	p.once.Do(func() {
		p.resp = resp
		p.err = err
		close(p.done)
	})
}

// completedPending は即時解決済みのfutureを返す（送信前の失敗用）。
func completedPending(err error) *Pending {
	p := newPending()
	p.complete(nil, err)
	return p
}

type pendingKey struct {
	endpoint string
	id       uint8
}

// pendingEntry は送信済みリクエストごとの再送・照合状態。
// wireは最初の送信と完全に同一のバイト列であり、再送はこれを
// そのまま使う（RFC 2865: 同一id・同一Request Authenticator）。
type pendingEntry struct {
	mu           sync.Mutex
	key          pendingKey
	wire         []byte
	requestAuth  [packet.AuthenticatorLength]byte
	secret       []byte
	attemptsLeft int
	attempt      int
	timer        *time.Timer
	pending      *Pending
	reportDone   func(success bool)
}

// pendingTable は(endpoint, id)からペンディング状態を引く並行マップ。
// takeによる除去が完了権の獲得を兼ねる: 応答・タイムアウト・取り消しの
// うち最初にtakeした側だけがfutureを解決する。
type pendingTable struct {
	mu      sync.Mutex
	entries map[pendingKey]*pendingEntry
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[pendingKey]*pendingEntry)}
}

func (t *pendingTable) insert(e *pendingEntry) {
	t.mu.Lock()
	t.entries[e.key] = e
	t.mu.Unlock()
}

func (t *pendingTable) get(key pendingKey) *pendingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries[key]
}

// take はエントリを取り除いて返す。存在しなければnilを返す。
func (t *pendingTable) take(key pendingKey) *pendingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.entries[key]
	if e != nil {
		delete(t.entries, key)
	}
	return e
}

// takeIf はキーに対応するエントリがeと同一の場合に限り取り除く。
// 識別子の再利用と競合しても別リクエストを奪わないために使う。
func (t *pendingTable) takeIf(key pendingKey, e *pendingEntry) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries[key] != e {
		return false
	}
	delete(t.entries, key)
	return true
}

// takeAll は全エントリを取り除いて返す（クライアント停止用）。
func (t *pendingTable) takeAll() []*pendingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	all := make([]*pendingEntry, 0, len(t.entries))
	for _, e := range t.entries {
		all = append(all, e)
	}
	t.entries = make(map[pendingKey]*pendingEntry)
	return all
}
