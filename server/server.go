package server

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/oyaguma3/go-radius/dictionary"
	"github.com/oyaguma3/go-radius/packet"
)

// PacketServer はUDPソケット上のRADIUSサーバー。
// 1つのソケットを複数のgoroutineで処理するため、Handlerと
// SecretSourceは並行呼び出しに対して安全でなければならない。
type PacketServer struct {
	// Addr は待ち受けアドレス（例 ":1812"）
	Addr string
	// Handler はAccess-Request / Accounting-Requestの処理を行う
	Handler Handler
	// SecretSource は送信元ごとの共有シークレットを解決する
	SecretSource SecretSource
	// Dictionary は属性の型付けに使う（nilなら組み込みディクショナリ）
	Dictionary *dictionary.Dictionary

	mu     sync.Mutex
	conn   net.PacketConn
	closed bool
	wg     sync.WaitGroup
}

// ListenAndServe はUDPソケットを開いて受信ループを実行する。
// Shutdownによって停止するまで戻らない。
func (s *PacketServer) ListenAndServe() error {
	conn, err := net.ListenPacket("udp", s.Addr)
	if err != nil {
		return err
	}
	if err := s.Serve(conn); err != nil {
		return err
	}
	return nil
}

// Serve は与えられたソケット上で受信ループを実行する。
func (s *PacketServer) Serve(conn net.PacketConn) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.conn = conn
	s.mu.Unlock()

	buf := make([]byte, packet.MaxLength)
	for {
		n, src, err := conn.ReadFrom(buf)
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
		raw := make([]byte, n)
		copy(raw, buf[:n])

		s.wg.Add(1)
		go func(raw []byte, src net.Addr) {
			defer s.wg.Done()
			resp := s.Handle(context.Background(), raw, src)
			if resp == nil {
				return
			}
			if _, err := conn.WriteTo(resp, src); err != nil {
				slog.Error("failed to send response",
					"event_id", "PKT_SEND_ERR",
					"dst", src.String(),
					"error", err,
				)
			}
		}(raw, src)
	}
}

// Handle は1つの受信データグラムを処理し、送出すべき応答バイト列を返す。
// 応答しない場合（検証失敗・未知の送信元・未対応コードなど）はnilを返す。
//
// 処理手順:
//  1. 共有シークレット解決（解決不能なら破棄）
//  2. 復号（不正形式なら破棄）
//  3. コード分類とAuthenticator検証
//     - Accounting-Request: Request Authenticatorを検証
//     - Access-Request: Request Authenticatorはランダム値のため検証なし
//     - Status-Server: Message-Authenticator必須（RFC 5997）
//  4. Message-Authenticator検証（存在する場合）
//  5. ハンドラディスパッチ
//  6. 応答の構築: Identifier引き継ぎ・Proxy-State写し・
//     Message-Authenticator・Response Authenticator
func (s *PacketServer) Handle(ctx context.Context, raw []byte, src net.Addr) []byte {
	traceID := uuid.New().String()

	secret, err := s.SecretSource.RADIUSSecret(ctx, src)
	if err != nil || len(secret) == 0 {
		slog.Warn("dropping datagram from unknown source",
			"event_id", "PKT_NO_SECRET",
			"trace_id", traceID,
			"src", src.String(),
			"error", ErrUnknownSecret,
		)
		return nil
	}

	req, err := packet.Decode(raw, s.dict())
	if err != nil {
		slog.Warn("dropping malformed datagram",
			"event_id", "PKT_MALFORMED",
			"trace_id", traceID,
			"src", src.String(),
			"error", err,
		)
		return nil
	}

	slog.Info("received request",
		"event_id", "PKT_RECV",
		"trace_id", traceID,
		"src", src.String(),
		"code", req.Code.String(),
		"identifier", req.Identifier,
	)

	switch req.Code {
	case packet.CodeAccessRequest:
		if packet.HasMessageAuthenticator(raw) &&
			!packet.VerifyMessageAuthenticator(raw, nil, secret) {
			slog.Warn("message authenticator verification failed",
				"event_id", "PKT_MA_INVALID",
				"trace_id", traceID,
				"src", src.String(),
			)
			return nil
		}

	case packet.CodeAccountingRequest:
		if !packet.VerifyAccountingRequestAuthenticator(raw, secret) {
			slog.Warn("accounting request authenticator mismatch",
				"event_id", "PKT_AUTH_INVALID",
				"trace_id", traceID,
				"src", src.String(),
			)
			return nil
		}

	case packet.CodeStatusServer:
		return s.handleStatusServer(req, raw, src, secret, traceID)

	default:
		slog.Warn("dropping unsupported packet code",
			"event_id", "PKT_UNKNOWN_CODE",
			"trace_id", traceID,
			"src", src.String(),
			"code", uint8(req.Code),
			"error", packet.ErrUnknownPacketType,
		)
		return nil
	}

	if s.Handler == nil {
		return nil
	}
	w := &captureWriter{}
	s.Handler.ServeRADIUS(w, &Request{
		Packet:     req,
		RemoteAddr: src,
		Secret:     secret,
		TraceID:    traceID,
		Raw:        raw,
	})
	if w.resp == nil {
		slog.Info("no response for request",
			"event_id", "PKT_DROP",
			"trace_id", traceID,
		)
		return nil
	}
	return s.encodeResponse(req, w.resp, secret, traceID)
}

// handleStatusServer はStatus-Server(Code=12)にAccess-Acceptで応答する。
// Message-Authenticator検証失敗時はnilを返す（応答なし）。
func (s *PacketServer) handleStatusServer(req *packet.Packet, raw []byte, src net.Addr, secret []byte, traceID string) []byte {
	if !packet.VerifyMessageAuthenticator(raw, nil, secret) {
		slog.Warn("status-server message authenticator invalid",
			"event_id", "STATUS_AUTH_FAIL",
			"trace_id", traceID,
			"src", src.String(),
		)
		return nil
	}
	resp := req.Response(packet.CodeAccessAccept)
	out := s.encodeResponse(req, resp, secret, traceID)
	if out != nil {
		slog.Info("status-server ok",
			"event_id", "STATUS_OK",
			"trace_id", traceID,
			"src", src.String(),
		)
	}
	return out
}

// encodeResponse は応答パケットを確定して符号化する。
// Identifierはリクエストから引き継ぎ、Proxy-Stateを受信順に写し、
// Access系応答とStatus-Server応答にはMessage-Authenticatorを付与する。
func (s *PacketServer) encodeResponse(req, resp *packet.Packet, secret []byte, traceID string) []byte {
	resp.Identifier = req.Identifier
	extractProxyStates(req).apply(resp)

	switch resp.Code {
	case packet.CodeAccessAccept, packet.CodeAccessReject, packet.CodeAccessChallenge:
		resp.AddMessageAuthenticator()
	}

	out, err := resp.Encode(secret, req.Authenticator[:])
	if err != nil {
		slog.Error("failed to encode response",
			"event_id", "PKT_ENCODE_ERR",
			"trace_id", traceID,
			"code", resp.Code.String(),
			"error", err,
		)
		return nil
	}
	return out
}

func (s *PacketServer) dict() *dictionary.Dictionary {
	if s.Dictionary != nil {
		return s.Dictionary
	}
	return dictionary.Default()
}

// Shutdown はサーバーをグレースフルに停止する。
// ソケットを閉じ、処理中のハンドラの完了をctxの期限まで待つ。
func (s *PacketServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
