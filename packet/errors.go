package packet

import "errors"

// 復号エラー
var (
	// ErrMalformedPacket はヘッダ欠損・長さフィールド不整合・属性領域の
	// 超過など、パケットを復号できない場合のエラー
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrUnknownPacketType は現在の役割で扱えないパケットコードのエラー
	ErrUnknownPacketType = errors.New("unknown packet type")
)

// 符号化・検証エラー
var (
	// ErrPacketTooLong は符号化後のサイズが4096バイトを超える場合のエラー
	ErrPacketTooLong = errors.New("packet too long")

	// ErrBadAuthenticator はMD5/HMAC-MD5検証の不一致エラー
	ErrBadAuthenticator = errors.New("bad authenticator")

	// ErrPasswordTooLong はUser-Password平文が128バイトを超える場合のエラー
	ErrPasswordTooLong = errors.New("password exceeds 128 bytes")

	// ErrMissingRequestAuth は応答の符号化にRequest Authenticatorが
	// 与えられなかった場合のエラー
	ErrMissingRequestAuth = errors.New("request authenticator required")
)
