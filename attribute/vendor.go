package attribute

import (
	"encoding/binary"
	"fmt"
)

// VendorSpecific はVendor-Specific属性（コード26）の値。
// Vendor-Id（4バイト）とサブ属性列を内包する。サブ属性の順序は
// ワイヤ上の順序をそのまま保持する。
type VendorSpecific struct {
	// VendorID はSMIベンダーID
	VendorID uint32
	// Sub はサブ属性列（受信順）
	Sub []Attribute
}

func (v VendorSpecific) DataType() DataType { return TypeVendorSpecific }

func (v VendorSpecific) Encode() []byte {
	b := make([]byte, 4, 4+len(v.Sub)*8)
	binary.BigEndian.PutUint32(b, v.VendorID)
	for _, sub := range v.Sub {
		val := sub.Value.Encode()
		b = append(b, sub.Code, byte(HeaderLength+len(val)))
		b = append(b, val...)
	}
	return b
}

func (v VendorSpecific) String() string {
	return fmt.Sprintf("vendor=%d sub=%d", v.VendorID, len(v.Sub))
}

// NewVendorSpecific はネスト形式でVSAを構築する。
// Vendor-Specific属性を文字列・バイト列から直接構築する手段は提供しない。
func NewVendorSpecific(vendorID uint32, sub []Attribute) Attribute {
	return Attribute{
		Code:  CodeVendorSpecific,
		Value: VendorSpecific{VendorID: vendorID, Sub: sub},
	}
}

// RawAttr はワイヤ上の1属性（タイプコードと値バイト列）を表す。
// 型付けはdictionaryパッケージが行う。
type RawAttr struct {
	Code uint8
	Data []byte
}

// ScanWire はバイト列を属性列に分解する。
// 属性長が2未満、または親バッファを超過する場合はErrMalformedAttributeを返す。
func ScanWire(b []byte) ([]RawAttr, error) {
	var attrs []RawAttr
	for len(b) > 0 {
		if len(b) < HeaderLength {
			return nil, fmt.Errorf("%w: truncated attribute header", ErrMalformedAttribute)
		}
		length := int(b[1])
		if length < HeaderLength {
			return nil, fmt.Errorf("%w: attribute length %d below minimum", ErrMalformedAttribute, length)
		}
		if length > len(b) {
			return nil, fmt.Errorf("%w: attribute length %d exceeds remaining %d bytes", ErrMalformedAttribute, length, len(b))
		}
		data := make([]byte, length-HeaderLength)
		copy(data, b[HeaderLength:length])
		attrs = append(attrs, RawAttr{Code: b[0], Data: data})
		b = b[length:]
	}
	return attrs, nil
}
