package packet

import (
	"github.com/oyaguma3/go-radius/attribute"
)

// maxEAPMessageAttrLen はEAP-Message属性1つあたりの最大バイト数（RFC 3579）
const maxEAPMessageAttrLen = 253

// EAPMessage は全EAP-Message属性を受信順に結合して返す。
// 断片の順序はパケットの属性順序によって保存されている。
// EAP-Message属性が存在しない場合は(nil, false)を返す。
func (p *Packet) EAPMessage() ([]byte, bool) {
	values := p.GetAll(attribute.CodeEAPMessage)
	if len(values) == 0 {
		return nil, false
	}
	var msg []byte
	for _, v := range values {
		msg = append(msg, v.Encode()...)
	}
	return msg, true
}

// SetEAPMessage はEAP-Message属性を設定する。
// 既存のEAP-Message属性は取り除かれ、253バイト超のメッセージは
// 自動的に分割して順に追加される。
func (p *Packet) SetEAPMessage(msg []byte) {
	p.RemoveAll(attribute.CodeEAPMessage)
	for _, chunk := range SplitEAPMessage(msg) {
		p.Add(attribute.Attribute{Code: attribute.CodeEAPMessage, Value: attribute.Octets(chunk)})
	}
}

// SplitEAPMessage はEAPメッセージを253バイト以下のチャンクに分割する。
func SplitEAPMessage(msg []byte) [][]byte {
	if len(msg) == 0 {
		return [][]byte{msg}
	}
	var chunks [][]byte
	for len(msg) > 0 {
		n := min(maxEAPMessageAttrLen, len(msg))
		chunks = append(chunks, msg[:n])
		msg = msg[n:]
	}
	return chunks
}
