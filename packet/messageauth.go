package packet

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/binary"

	"github.com/oyaguma3/go-radius/attribute"
)

// AddMessageAuthenticator はMessage-Authenticator属性のプレースホルダを
// 追加する。実際のHMAC-MD5値はEncodeが二段階計算で埋める（RFC 3579 3.2）。
func (p *Packet) AddMessageAuthenticator() {
	if _, ok := p.Get(attribute.CodeMessageAuthenticator); ok {
		return
	}
	p.Add(attribute.Attribute{
		Code:  attribute.CodeMessageAuthenticator,
		Value: attribute.Octets(make([]byte, AuthenticatorLength)),
	})
}

// HasMessageAuthenticator は受信データグラムにMessage-Authenticator属性が
// 含まれるかどうかを返す。
func HasMessageAuthenticator(raw []byte) bool {
	_, ok := findMessageAuthenticator(raw)
	return ok
}

// VerifyMessageAuthenticator は受信データグラムのMessage-Authenticator属性を
// 検証する（RFC 3579 3.2）。
// 属性値を16バイトゼロに置換し、リクエストの場合は受信Authenticatorのまま、
// 応答の場合はrequestAuthをヘッダに置いた上でHMAC-MD5を再計算して比較する。
// requestAuthはリクエスト検証時はnil、応答検証時は16バイトを渡す。
// 属性が存在しない、または値が16バイトでない場合はfalseを返す。
func VerifyMessageAuthenticator(raw []byte, requestAuth []byte, secret []byte) bool {
	offset, ok := findMessageAuthenticator(raw)
	if !ok {
		return false
	}
	length := int(binary.BigEndian.Uint16(raw[2:4]))

	orig := make([]byte, AuthenticatorLength)
	copy(orig, raw[offset:offset+AuthenticatorLength])

	work := make([]byte, length)
	copy(work, raw[:length])
	for i := 0; i < AuthenticatorLength; i++ {
		work[offset+i] = 0
	}
	if requestAuth != nil {
		copy(work[4:HeaderLength], requestAuth)
	}

	mac := hmac.New(md5.New, secret)
	mac.Write(work)
	return hmac.Equal(mac.Sum(nil), orig)
}

// findMessageAuthenticator はデータグラム内のMessage-Authenticator属性値の
// オフセットを返す。見つからない、または値が16バイトでなければfalseを返す。
func findMessageAuthenticator(raw []byte) (int, bool) {
	if len(raw) < HeaderLength {
		return 0, false
	}
	length := int(binary.BigEndian.Uint16(raw[2:4]))
	if length < HeaderLength || length > len(raw) {
		return 0, false
	}
	i := HeaderLength
	for i+attribute.HeaderLength <= length {
		attrLen := int(raw[i+1])
		if attrLen < attribute.HeaderLength || i+attrLen > length {
			return 0, false
		}
		if raw[i] == attribute.CodeMessageAuthenticator {
			if attrLen != attribute.HeaderLength+AuthenticatorLength {
				return 0, false
			}
			return i + attribute.HeaderLength, true
		}
		i += attrLen
	}
	return 0, false
}
