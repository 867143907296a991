package packet

import (
	"crypto/rand"
	"fmt"
)

// GenerateRequestAuthenticator は16バイトのランダムな
// Request Authenticatorを生成する（RFC 2865 3）。
func GenerateRequestAuthenticator() ([AuthenticatorLength]byte, error) {
	var auth [AuthenticatorLength]byte
	if _, err := rand.Read(auth[:]); err != nil {
		return auth, fmt.Errorf("failed to generate request authenticator: %w", err)
	}
	return auth, nil
}

// HasAuthenticator はAuthenticatorフィールドが設定済みかどうかを返す。
// ゼロ埋めのフィールドは未設定とみなす。
func (p *Packet) HasAuthenticator() bool {
	for _, b := range p.Authenticator {
		if b != 0 {
			return true
		}
	}
	return false
}
