package packet

import (
	"crypto/md5"
	"fmt"
)

// HidePassword はUser-Password平文を秘匿形式に変換する（RFC 2865 5.2）。
// 平文は16バイト境界までゼロ埋めされ、ブロックiごとに
// b_i = MD5(secret ‖ c_{i-1})（c_0 = requestAuth、c_iは前ブロックの暗号文）
// とのXORを取る。平文は最大128バイト。
func HidePassword(password, secret []byte, requestAuth [AuthenticatorLength]byte) ([]byte, error) {
	if len(password) > MaxPasswordLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrPasswordTooLong, len(password))
	}
	blocks := (len(password) + md5.Size - 1) / md5.Size
	if blocks == 0 {
		blocks = 1
	}
	out := make([]byte, blocks*md5.Size)
	copy(out, password)

	prev := requestAuth[:]
	for i := 0; i < len(out); i += md5.Size {
		h := md5.New()
		h.Write(secret)
		h.Write(prev)
		digest := h.Sum(nil)
		for j := range digest {
			out[i+j] ^= digest[j]
		}
		prev = out[i : i+md5.Size]
	}
	return out, nil
}

// RevealPassword は秘匿形式のUser-Password値を平文に復元する。
// 値は16の倍数（最大128バイト）でなければならない。
// 末尾のゼロ埋めは取り除かれる。
func RevealPassword(hidden, secret []byte, requestAuth [AuthenticatorLength]byte) ([]byte, error) {
	if len(hidden) == 0 || len(hidden)%md5.Size != 0 || len(hidden) > MaxPasswordLength {
		return nil, fmt.Errorf("%w: hidden password length %d", ErrMalformedPacket, len(hidden))
	}
	out := make([]byte, len(hidden))

	prev := requestAuth[:]
	for i := 0; i < len(hidden); i += md5.Size {
		h := md5.New()
		h.Write(secret)
		h.Write(prev)
		digest := h.Sum(nil)
		for j := range digest {
			out[i+j] = hidden[i+j] ^ digest[j]
		}
		prev = hidden[i : i+md5.Size]
	}

	end := len(out)
	for end > 0 && out[end-1] == 0 {
		end--
	}
	return out[:end], nil
}
