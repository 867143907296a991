// Package server はRADIUS UDPサーバー（RFC 2865/2866/5997）を提供する。
// 受信パケットの分類・共有シークレット解決・Authenticator検証・
// ハンドラディスパッチ・応答の符号化を行う。
package server

import (
	"net"

	"github.com/oyaguma3/go-radius/packet"
)

// Request は検証済みの受信リクエスト。
type Request struct {
	// Packet は復号済みのリクエストパケット
	Packet *packet.Packet
	// RemoteAddr は送信元アドレス
	RemoteAddr net.Addr
	// Secret は送信元に対応する共有シークレット
	Secret []byte
	// TraceID はログ相関用のリクエスト識別子
	TraceID string
	// Raw は受信データグラムのバイト列
	Raw []byte
}

// ResponseWriter はハンドラが応答パケットを書き込む先。
type ResponseWriter interface {
	// Write は応答パケットを送出する。Identifierとproxy-Stateの引き継ぎ、
	// Message-AuthenticatorとResponse Authenticatorの計算はサーバーが行う。
	Write(resp *packet.Packet) error
}

// Handler はリクエストを処理して応答を生成する。
// 応答しない場合はWriteを呼ばずに戻る（データグラム破棄）。
type Handler interface {
	ServeRADIUS(w ResponseWriter, r *Request)
}

// HandlerFunc は関数をHandlerとして使うためのアダプタ。
type HandlerFunc func(w ResponseWriter, r *Request)

// ServeRADIUS はf(w, r)を呼び出す。
func (f HandlerFunc) ServeRADIUS(w ResponseWriter, r *Request) {
	f(w, r)
}

// captureWriter はハンドラの応答を捕捉するResponseWriter実装。
type captureWriter struct {
	resp *packet.Packet
}

func (w *captureWriter) Write(resp *packet.Packet) error {
	w.resp = resp
	return nil
}
