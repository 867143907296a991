// Package client はRADIUSクライアント（RFC 2865/2866）を提供する。
// 識別子の貸し出し、応答の照合、エンドポイントごとの再送・タイムアウト、
// 失敗ベースのブラックリストを扱う。
package client

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/oyaguma3/go-radius/attribute"
	"github.com/oyaguma3/go-radius/dictionary"
	"github.com/oyaguma3/go-radius/packet"
)

// Endpoint はRADIUSサーバーの宛先（アドレスと共有シークレットの組）。
type Endpoint struct {
	Addr   net.Addr
	Secret []byte
}

func (e Endpoint) key() string { return e.Addr.String() }

// Option はClientの設定を変更する。
type Option func(*Client)

// WithRetries は1リクエストあたりの送信試行回数を設定する。
func WithRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithRetryInterval は再送間隔を設定する。
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithRetryBackoff は再送スケジュールを注入する。
// attemptは送信済み回数（初回送信後は1）。固定間隔・指数バックオフ
// いずれも表現できる。未設定時はWithRetryIntervalの固定間隔。
func WithRetryBackoff(f func(attempt int) time.Duration) Option {
	return func(c *Client) {
		if f != nil {
			c.backoff = f
		}
	}
}

// WithBlacklistTTL はブラックリストの抑止時間を設定する。
func WithBlacklistTTL(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.blacklistTTL = d
		}
	}
}

// WithFailCountThreshold はブラックリスト入りとなる連続失敗数を設定する。
func WithFailCountThreshold(n uint32) Option {
	return func(c *Client) {
		if n > 0 {
			c.failThreshold = n
		}
	}
}

// WithDictionary は応答の復号に使うディクショナリを設定する。
func WithDictionary(d *dictionary.Dictionary) Option {
	return func(c *Client) {
		if d != nil {
			c.dict = d
		}
	}
}

// Client はUDPソケット上のRADIUSクライアント。
// 全フィールドは並行アクセスに対して安全であり、Sendは複数の
// goroutineから同時に呼び出せる。
type Client struct {
	conn net.PacketConn
	dict *dictionary.Dictionary

	retries       int
	interval      time.Duration
	backoff       func(attempt int) time.Duration
	blacklistTTL  time.Duration
	failThreshold uint32

	ids       *idPool
	table     *pendingTable
	blacklist *blacklist

	closeOnce sync.Once
	closed    chan struct{}
	wg        sync.WaitGroup
}

// New は与えられたソケット上で動くクライアントを生成し、
// 受信ループを開始する。ソケットの所有権はクライアントに移り、
// Closeで閉じられる。
func New(conn net.PacketConn, opts ...Option) *Client {
	c := &Client{
		conn:          conn,
		dict:          dictionary.Default(),
		retries:       DefaultRetries,
		interval:      DefaultRetryInterval,
		blacklistTTL:  DefaultBlacklistTTL,
		failThreshold: DefaultFailCountThreshold,
		ids:           newIDPool(),
		table:         newPendingTable(),
		closed:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.backoff == nil {
		interval := c.interval
		c.backoff = func(int) time.Duration { return interval }
	}
	c.blacklist = newBlacklist(c.blacklistTTL, c.failThreshold)

	c.wg.Add(1)
	go c.readLoop()
	return c
}

// Send はリクエストを送信し、完了を表すfutureを返す。ブロックしない。
//
// Access-RequestでRequest Authenticator未設定の場合はランダムに生成し、
// User-Password属性があれば秘匿アルゴリズムで変換する。
// Message-Authenticator属性があればHMAC-MD5を埋める。
// 識別子はエンドポイントごとに貸し出され、解決時に返却される。
func (c *Client) Send(req *packet.Packet, ep Endpoint) *Pending {
	select {
	case <-c.closed:
		return completedPending(ErrClientClosed)
	default:
	}

	pd := newPending()
	endpoint := ep.key()

	id, err := c.ids.acquire(endpoint)
	if err != nil {
		pd.complete(nil, err)
		return pd
	}

	wire, requestAuth, err := c.prepare(req, ep, id)
	if err != nil {
		// ローカルな符号化失敗はブレーカーに数えない
		c.ids.release(endpoint, id)
		pd.complete(nil, err)
		return pd
	}

	reportDone, err := c.blacklist.allow(endpoint)
	if err != nil {
		c.ids.release(endpoint, id)
		pd.complete(nil, err)
		return pd
	}

	key := pendingKey{endpoint: endpoint, id: id}
	entry := &pendingEntry{
		key:          key,
		wire:         wire,
		requestAuth:  requestAuth,
		secret:       ep.Secret,
		attemptsLeft: c.retries - 1,
		attempt:      1,
		pending:      pd,
		reportDone:   reportDone,
	}
	pd.cancel = func() { c.cancelRequest(entry) }
	c.table.insert(entry)

	// Closeとの競合: takeAll後に挿入された場合はここで解決する
	select {
	case <-c.closed:
		if c.table.takeIf(key, entry) {
			c.settle(entry, nil, ErrClientClosed, true)
		}
		return pd
	default:
	}

	if _, err := c.conn.WriteTo(wire, ep.Addr); err != nil {
		if c.table.takeIf(key, entry) {
			c.settle(entry, nil, err, false)
		}
		return pd
	}
	entry.mu.Lock()
	entry.timer = time.AfterFunc(c.backoff(1), func() { c.onTimer(entry, ep.Addr) })
	entry.mu.Unlock()
	return pd
}

// Exchange はSendのブロッキング版。ctxの取り消しでリクエストも取り消す。
func (c *Client) Exchange(ctx context.Context, req *packet.Packet, ep Endpoint) (*packet.Packet, error) {
	pd := c.Send(req, ep)
	select {
	case <-pd.Done():
		return pd.Result()
	case <-ctx.Done():
		pd.Cancel()
		return nil, ctx.Err()
	}
}

// prepare はリクエストの複製に識別子・Request Authenticator・
// User-Password秘匿を適用し、ワイヤ形式に符号化する。
// 呼び出し側のパケットは変更しない。
func (c *Client) prepare(req *packet.Packet, ep Endpoint, id uint8) ([]byte, [packet.AuthenticatorLength]byte, error) {
	r := *req
	r.Attributes = make([]attribute.Attribute, len(req.Attributes))
	copy(r.Attributes, req.Attributes)
	r.Identifier = id

	var zero [packet.AuthenticatorLength]byte
	if r.Code == packet.CodeAccessRequest || r.Code == packet.CodeStatusServer {
		if !r.HasAuthenticator() {
			auth, err := packet.GenerateRequestAuthenticator()
			if err != nil {
				return nil, zero, err
			}
			r.Authenticator = auth
		}
	}
	if r.Code == packet.CodeAccessRequest {
		if v, ok := r.Get(attribute.CodeUserPassword); ok {
			hidden, err := packet.HidePassword(v.Encode(), ep.Secret, r.Authenticator)
			if err != nil {
				return nil, zero, err
			}
			r.Set(attribute.CodeUserPassword, attribute.Octets(hidden))
		}
	}

	wire, err := r.Encode(ep.Secret, nil)
	if err != nil {
		return nil, zero, err
	}
	// Accounting-Requestでは符号化後のAuthenticatorフィールドが
	// 応答検証に使うRequest Authenticatorとなる
	var requestAuth [packet.AuthenticatorLength]byte
	copy(requestAuth[:], wire[4:packet.HeaderLength])
	return wire, requestAuth, nil
}

// readLoop は受信データグラムをペンディング表に突き合わせる。
func (c *Client) readLoop() {
	defer c.wg.Done()
	buf := make([]byte, packet.MaxLength)
	for {
		n, src, err := c.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-c.closed:
				return
			default:
				slog.Warn("radius client read error",
					"event_id", "PKT_READ_ERR",
					"error", err,
				)
				return
			}
		}
		raw := make([]byte, n)
		copy(raw, buf[:n])
		c.onDatagram(raw, src)
	}
}

// onDatagram は1つの受信データグラムを処理する。
// 対応するペンディングリクエストがなければ破棄する。
// Authenticator検証に失敗した場合はErrBadAuthenticatorで解決する。
func (c *Client) onDatagram(raw []byte, src net.Addr) {
	resp, err := packet.Decode(raw, c.dict)
	if err != nil {
		slog.Warn("dropping malformed datagram",
			"event_id", "PKT_MALFORMED",
			"src", src.String(),
			"error", err,
		)
		return
	}

	key := pendingKey{endpoint: src.String(), id: resp.Identifier}
	entry := c.table.take(key)
	if entry == nil {
		slog.Debug("dropping unmatched response",
			"event_id", "RES_UNMATCHED",
			"src", src.String(),
			"identifier", resp.Identifier,
			"code", resp.Code.String(),
		)
		return
	}

	if !packet.VerifyResponseAuthenticator(raw, entry.requestAuth, entry.secret) {
		c.settle(entry, nil, packet.ErrBadAuthenticator, false)
		return
	}
	if packet.HasMessageAuthenticator(raw) &&
		!packet.VerifyMessageAuthenticator(raw, entry.requestAuth[:], entry.secret) {
		c.settle(entry, nil, packet.ErrBadAuthenticator, false)
		return
	}
	c.settle(entry, resp, nil, true)
}

// onTimer は再送タイマーの発火を処理する。
// 残り試行があれば同一バイト列を再送し、なければErrTimeoutで解決する。
// 識別子が再利用されても別リクエストに触れないよう、キーではなく
// エントリ自身の同一性を確認する。
func (c *Client) onTimer(entry *pendingEntry, addr net.Addr) {
	key := entry.key
	if c.table.get(key) != entry {
		return
	}

	entry.mu.Lock()
	if entry.attemptsLeft > 0 {
		entry.attemptsLeft--
		entry.attempt++
		attempt := entry.attempt
		if _, err := c.conn.WriteTo(entry.wire, addr); err != nil {
			entry.mu.Unlock()
			if c.table.takeIf(key, entry) {
				c.settle(entry, nil, err, false)
			}
			return
		}
		slog.Debug("retransmitting request",
			"event_id", "REQ_RETRY",
			"endpoint", key.endpoint,
			"identifier", key.id,
			"attempt", attempt,
		)
		entry.timer = time.AfterFunc(c.backoff(attempt), func() { c.onTimer(entry, addr) })
		entry.mu.Unlock()
		return
	}
	entry.mu.Unlock()

	if c.table.takeIf(key, entry) {
		c.settle(entry, nil, ErrTimeout, false)
	}
}

// cancelRequest は呼び出し側からの取り消しを処理する。
// 取り消しはローカルな判断であり、ブレーカーの失敗には数えない。
// 既に解決済み（識別子が再利用済み）の場合は何もしない。
func (c *Client) cancelRequest(entry *pendingEntry) {
	if !c.table.takeIf(entry.key, entry) {
		return
	}
	c.settle(entry, nil, ErrCancelled, true)
}

// settle は表から取り除かれたエントリを解決する。
// タイマー停止・識別子返却・ブレーカーへの結果報告を行う。
func (c *Client) settle(entry *pendingEntry, resp *packet.Packet, err error, success bool) {
	entry.mu.Lock()
	if entry.timer != nil {
		entry.timer.Stop()
	}
	entry.mu.Unlock()
	c.ids.release(entry.key.endpoint, entry.key.id)
	if entry.reportDone != nil {
		entry.reportDone(success)
	}
	entry.pending.complete(resp, err)
}

// Close はクライアントを停止する。ソケットを閉じ、未解決の
// リクエストをすべてErrClientClosedで解決する。
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
		for _, entry := range c.table.takeAll() {
			c.settle(entry, nil, ErrClientClosed, true)
		}
	})
	c.wg.Wait()
	return err
}
