package packet

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/binary"
	"fmt"

	"github.com/oyaguma3/go-radius/attribute"
	"github.com/oyaguma3/go-radius/dictionary"
)

// Encode はパケットをワイヤ形式に符号化する。
//
// Authenticatorフィールドはパケット種別ごとに決まる:
//   - Access-Request / Status-Server / Status-Client: p.Authenticator
//     （呼び出し側が生成したランダムなRequest Authenticator）をそのまま使う
//   - Accounting-Request: MD5(code ‖ id ‖ length ‖ 16ゼロ ‖ attrs ‖ secret)
//   - 応答（Access-Accept/Reject/Challenge, Accounting-Response）:
//     MD5(code ‖ id ‖ length ‖ requestAuth ‖ attrs ‖ secret)
//
// requestAuthは応答の符号化時に必須（リクエストではnil）。
// Message-Authenticator属性が含まれる場合、その値は16バイトゼロの
// プレースホルダでHMAC-MD5を計算してから埋め、その後に外側の
// Authenticatorを確定する（RFC 3579 3.2）。
func (p *Packet) Encode(secret []byte, requestAuth []byte) ([]byte, error) {
	attrs, maOffset, err := p.encodeAttributes(true)
	if err != nil {
		return nil, err
	}
	length := HeaderLength + len(attrs)
	if length > MaxLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLong, length)
	}

	buf := make([]byte, length)
	buf[0] = byte(p.Code)
	buf[1] = p.Identifier
	binary.BigEndian.PutUint16(buf[2:4], uint16(length))
	copy(buf[HeaderLength:], attrs)

	// HMAC計算とAuthenticator確定時にヘッダへ置く値
	var hashAuth [AuthenticatorLength]byte
	switch p.Code {
	case CodeAccessRequest, CodeStatusServer, CodeStatusClient:
		hashAuth = p.Authenticator
	case CodeAccountingRequest:
		// 16ゼロのまま
	default:
		if len(requestAuth) != AuthenticatorLength {
			return nil, ErrMissingRequestAuth
		}
		copy(hashAuth[:], requestAuth)
	}
	copy(buf[4:HeaderLength], hashAuth[:])

	if maOffset >= 0 {
		mac := hmac.New(md5.New, secret)
		mac.Write(buf)
		copy(buf[HeaderLength+maOffset:], mac.Sum(nil))
	}

	switch p.Code {
	case CodeAccessRequest, CodeStatusServer, CodeStatusClient:
		// Request Authenticatorはランダム値のまま送出する
	default:
		h := md5.New()
		h.Write(buf)
		h.Write(secret)
		copy(buf[4:HeaderLength], h.Sum(nil))
	}
	return buf, nil
}

// encodeAttributes は属性列を与えられた順序で直列化する。
// zeroMAが真の場合、Message-Authenticator属性の値を16バイトゼロに
// 正規化し、その値の属性領域内オフセットを返す（存在しなければ-1）。
func (p *Packet) encodeAttributes(zeroMA bool) ([]byte, int, error) {
	var out []byte
	maOffset := -1
	for _, a := range p.Attributes {
		val := a.Value.Encode()
		if zeroMA && a.Code == attribute.CodeMessageAuthenticator && maOffset < 0 {
			val = make([]byte, AuthenticatorLength)
			maOffset = len(out) + attribute.HeaderLength
		}
		if len(val) > attribute.MaxValueLength {
			return nil, -1, fmt.Errorf("%w: attribute %d value is %d bytes", attribute.ErrInvalidValue, a.Code, len(val))
		}
		out = append(out, a.Code, byte(attribute.HeaderLength+len(val)))
		out = append(out, val...)
	}
	return out, maOffset, nil
}

// Decode はワイヤ形式のバイト列をパケットに復号する。
// 長さフィールドは[20, 4096]かつ受信バイト数以内でなければならない。
// 長さフィールドを超える受信バイトはパディングとして無視する（RFC 2865 3）。
// 属性の型付けはディクショナリに従い、未知属性はoctetsとして保持される。
func Decode(b []byte, d *dictionary.Dictionary) (*Packet, error) {
	if len(b) < HeaderLength {
		return nil, fmt.Errorf("%w: %d bytes is below header length", ErrMalformedPacket, len(b))
	}
	length := int(binary.BigEndian.Uint16(b[2:4]))
	if length < HeaderLength || length > MaxLength {
		return nil, fmt.Errorf("%w: length field %d out of range", ErrMalformedPacket, length)
	}
	if length > len(b) {
		return nil, fmt.Errorf("%w: length field %d exceeds datagram size %d", ErrMalformedPacket, length, len(b))
	}

	raw, err := attribute.ScanWire(b[HeaderLength:length])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPacket, err)
	}

	p := New(Code(b[0]), b[1])
	copy(p.Authenticator[:], b[4:HeaderLength])
	p.Attributes = make([]attribute.Attribute, 0, len(raw))
	for _, r := range raw {
		a, err := d.DecodeValue(dictionary.VendorNone, r.Code, r.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %d: %w", ErrMalformedPacket, r.Code, err)
		}
		p.Attributes = append(p.Attributes, a)
	}
	return p, nil
}

// VerifyResponseAuthenticator は受信した応答データグラムの
// Response Authenticatorを検証する（クライアント側）。
// expected = MD5(code ‖ id ‖ length ‖ requestAuth ‖ attrs ‖ secret)
func VerifyResponseAuthenticator(raw []byte, requestAuth [AuthenticatorLength]byte, secret []byte) bool {
	return verifyAuthenticator(raw, requestAuth[:], secret)
}

// VerifyAccountingRequestAuthenticator は受信したAccounting-Requestの
// Request Authenticatorを検証する（サーバー側）。
// expected = MD5(code ‖ id ‖ length ‖ 16ゼロ ‖ attrs ‖ secret)
func VerifyAccountingRequestAuthenticator(raw []byte, secret []byte) bool {
	var zero [AuthenticatorLength]byte
	return verifyAuthenticator(raw, zero[:], secret)
}

func verifyAuthenticator(raw, substituteAuth, secret []byte) bool {
	if len(raw) < HeaderLength {
		return false
	}
	length := int(binary.BigEndian.Uint16(raw[2:4]))
	if length < HeaderLength || length > len(raw) {
		return false
	}
	h := md5.New()
	h.Write(raw[:4])
	h.Write(substituteAuth)
	h.Write(raw[HeaderLength:length])
	h.Write(secret)
	return hmac.Equal(h.Sum(nil), raw[4:HeaderLength])
}

// VerifyResponse はパケットを再直列化してResponse Authenticatorを検証する。
// 受信時の生バイト列が手元にある場合はVerifyResponseAuthenticatorの方が速い。
func (p *Packet) VerifyResponse(secret []byte, requestAuth [AuthenticatorLength]byte) bool {
	attrs, _, err := p.encodeAttributes(false)
	if err != nil {
		return false
	}
	length := HeaderLength + len(attrs)
	h := md5.New()
	h.Write([]byte{byte(p.Code), p.Identifier, byte(length >> 8), byte(length)})
	h.Write(requestAuth[:])
	h.Write(attrs)
	h.Write(secret)
	return hmac.Equal(h.Sum(nil), p.Authenticator[:])
}
