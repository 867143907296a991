// Package packet はRADIUSパケット（RFC 2865/2866）の符号化・復号と
// Authenticator計算を提供する。
package packet

import (
	"github.com/oyaguma3/go-radius/attribute"
)

// Packet は1つのRADIUSパケットを表す。
// 属性の順序はワイヤ上の順序と一致し、符号化・復号を通じて保存される
// （EAP-Message断片の順序は意味を持つ）。
type Packet struct {
	Code          Code
	Identifier    uint8
	Authenticator [AuthenticatorLength]byte
	Attributes    []attribute.Attribute
}

// New は属性なしのパケットを生成する。
func New(code Code, identifier uint8) *Packet {
	return &Packet{Code: code, Identifier: identifier}
}

// Add は属性を末尾に追加する。
func (p *Packet) Add(a attribute.Attribute) {
	p.Attributes = append(p.Attributes, a)
}

// Get は指定コードの最初の属性値を返す。
func (p *Packet) Get(code uint8) (attribute.Value, bool) {
	for _, a := range p.Attributes {
		if a.Code == code {
			return a.Value, true
		}
	}
	return nil, false
}

// GetAll は指定コードの全属性値を受信順に返す。
func (p *Packet) GetAll(code uint8) []attribute.Value {
	var values []attribute.Value
	for _, a := range p.Attributes {
		if a.Code == code {
			values = append(values, a.Value)
		}
	}
	return values
}

// Set は指定コードの最初の属性値を置換する。存在しなければ追加する。
func (p *Packet) Set(code uint8, v attribute.Value) {
	for i, a := range p.Attributes {
		if a.Code == code {
			p.Attributes[i].Value = v
			return
		}
	}
	p.Add(attribute.Attribute{Code: code, Value: v})
}

// RemoveAll は指定コードの属性をすべて取り除き、除去数を返す。
func (p *Packet) RemoveAll(code uint8) int {
	var kept []attribute.Attribute
	removed := 0
	for _, a := range p.Attributes {
		if a.Code == code {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	p.Attributes = kept
	return removed
}

// Response は本パケットへの応答の骨格を生成する。
// IdentifierとAuthenticator（Request Authenticator）をコピーする。
func (p *Packet) Response(code Code) *Packet {
	r := New(code, p.Identifier)
	r.Authenticator = p.Authenticator
	return r
}
