package server

import (
	"github.com/oyaguma3/go-radius/attribute"
	"github.com/oyaguma3/go-radius/packet"
)

// proxyStates はリクエストから抽出したProxy-State属性値の順序付きリスト。
// RFC 2865に基づき、応答には受信したProxy-State属性を同じ順序で含める。
type proxyStates [][]byte

// extractProxyStates はパケットから全Proxy-State属性を抽出する（順序維持）。
func extractProxyStates(p *packet.Packet) proxyStates {
	var ps proxyStates
	for _, v := range p.GetAll(attribute.CodeProxyState) {
		ps = append(ps, v.Encode())
	}
	return ps
}

// apply はProxy-State属性を応答パケットに追加する（抽出時と同じ順序）。
func (ps proxyStates) apply(p *packet.Packet) {
	for _, v := range ps {
		p.Add(attribute.Attribute{Code: attribute.CodeProxyState, Value: attribute.Octets(v)})
	}
}
