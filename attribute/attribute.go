// Package attribute はRADIUS属性（RFC 2865 Section 5）の型付き値表現と
// ワイヤ形式の相互変換を提供する。
package attribute

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
)

// ワイヤ形式の長さ制約
const (
	// HeaderLength は属性ヘッダ（Type + Length）のバイト数
	HeaderLength = 2
	// MaxValueLength は属性値の最大バイト数（255 - ヘッダ2バイト）
	MaxValueLength = 253
	// CodeVendorSpecific はVendor-Specific属性のタイプコード（RFC 2865 5.26）
	CodeVendorSpecific = 26
)

// DataType は属性値のデータ型を表す。
type DataType uint8

const (
	// TypeString はUTF-8文字列
	TypeString DataType = iota
	// TypeOctets は任意のバイト列
	TypeOctets
	// TypeInteger は32ビット符号なし整数（ビッグエンディアン）
	TypeInteger
	// TypeDate はUNIX秒（32ビット、Integerと同一のワイヤ表現）
	TypeDate
	// TypeIPv4 はIPv4アドレス（4バイト）
	TypeIPv4
	// TypeIPv6 はIPv6アドレス（16バイト）
	TypeIPv6
	// TypeIPv6Prefix はIPv6プレフィックス（2〜18バイト、RFC 3162）
	TypeIPv6Prefix
	// TypeVendorSpecific はベンダー固有属性のコンテナ（RFC 2865 5.26）
	TypeVendorSpecific
)

// String はデータ型名を返す。
func (t DataType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeOctets:
		return "octets"
	case TypeInteger:
		return "integer"
	case TypeDate:
		return "date"
	case TypeIPv4:
		return "ipaddr"
	case TypeIPv6:
		return "ipv6addr"
	case TypeIPv6Prefix:
		return "ipv6prefix"
	case TypeVendorSpecific:
		return "vsa"
	default:
		return "unknown"
	}
}

// Value は型付き属性値を表す。
// 実装はString/Octets/Integer/Date/IPv4/IPv6/IPv6Prefix/VendorSpecificの
// 閉じた集合である。
type Value interface {
	// DataType は値のデータ型タグを返す
	DataType() DataType
	// Encode はワイヤ形式の値バイト列を返す
	Encode() []byte
	// String は人間可読のテキスト表現を返す
	String() string
}

// String はstring型の属性値。
type String string

func (v String) DataType() DataType { return TypeString }
func (v String) Encode() []byte     { return []byte(v) }
func (v String) String() string     { return string(v) }

// Octets はoctets型の属性値。
type Octets []byte

func (v Octets) DataType() DataType { return TypeOctets }
func (v Octets) Encode() []byte     { return []byte(v) }
func (v Octets) String() string     { return fmt.Sprintf("0x%x", []byte(v)) }

// Integer はinteger型の属性値。
type Integer uint32

func (v Integer) DataType() DataType { return TypeInteger }

func (v Integer) Encode() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func (v Integer) String() string { return strconv.FormatUint(uint64(v), 10) }

// Date はdate型の属性値（UNIX秒）。
type Date uint32

func (v Date) DataType() DataType { return TypeDate }

func (v Date) Encode() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func (v Date) String() string { return strconv.FormatUint(uint64(v), 10) }

// IPv4 はipaddr型の属性値。
type IPv4 [4]byte

func (v IPv4) DataType() DataType { return TypeIPv4 }

func (v IPv4) Encode() []byte {
	b := make([]byte, 4)
	copy(b, v[:])
	return b
}

func (v IPv4) String() string { return net.IP(v[:]).String() }

// IPv6 はipv6addr型の属性値。
type IPv6 [16]byte

func (v IPv6) DataType() DataType { return TypeIPv6 }

func (v IPv6) Encode() []byte {
	b := make([]byte, 16)
	copy(b, v[:])
	return b
}

func (v IPv6) String() string { return net.IP(v[:]).String() }

// IPv6Prefix はipv6prefix型の属性値（RFC 3162 2.3）。
// ワイヤ形式は [reserved(1)][prefix-length(1)][prefix...] で、
// prefixはプレフィックス長を収める最小バイト数まで切り詰められる。
type IPv6Prefix struct {
	// Bits はプレフィックス長（0〜128）
	Bits uint8
	// Addr はプレフィックスのアドレス部
	Addr [16]byte
}

func (v IPv6Prefix) DataType() DataType { return TypeIPv6Prefix }

func (v IPv6Prefix) Encode() []byte {
	n := (int(v.Bits) + 7) / 8
	b := make([]byte, 2+n)
	b[1] = v.Bits
	copy(b[2:], v.Addr[:n])
	return b
}

func (v IPv6Prefix) String() string {
	return fmt.Sprintf("%s/%d", net.IP(v.Addr[:]).String(), v.Bits)
}

// Attribute は1つのAVP（コード + 型付き値）を表す。
// Vendor-Specific属性の場合、ValueはVendorSpecificでサブ属性を内包する。
type Attribute struct {
	// Code は属性タイプコード（標準属性空間、またはVSA内ではベンダー空間）
	Code uint8
	// Value は型付き属性値
	Value Value
}

// New は標準属性を生成する。
func New(code uint8, value Value) Attribute {
	return Attribute{Code: code, Value: value}
}

// WireLength は属性全体（ヘッダ込み）のワイヤ長を返す。
func (a Attribute) WireLength() int {
	return HeaderLength + len(a.Value.Encode())
}

// Decode はワイヤ形式の値バイト列を指定データ型のValueに復号する。
// データ型ごとの長さ制約に反する場合はErrInvalidValueを返す。
// TypeVendorSpecificはネスト構造のためここでは扱わない（Decodeは
// dictionaryパッケージがサブ属性解決とあわせて行う）。
func Decode(t DataType, b []byte) (Value, error) {
	switch t {
	case TypeString:
		return String(b), nil
	case TypeOctets:
		v := make(Octets, len(b))
		copy(v, b)
		return v, nil
	case TypeInteger:
		if len(b) != 4 {
			return nil, fmt.Errorf("%w: integer value must be 4 bytes, got %d", ErrInvalidValue, len(b))
		}
		return Integer(binary.BigEndian.Uint32(b)), nil
	case TypeDate:
		if len(b) != 4 {
			return nil, fmt.Errorf("%w: date value must be 4 bytes, got %d", ErrInvalidValue, len(b))
		}
		return Date(binary.BigEndian.Uint32(b)), nil
	case TypeIPv4:
		if len(b) != 4 {
			return nil, fmt.Errorf("%w: ipaddr value must be 4 bytes, got %d", ErrInvalidValue, len(b))
		}
		var v IPv4
		copy(v[:], b)
		return v, nil
	case TypeIPv6:
		if len(b) != 16 {
			return nil, fmt.Errorf("%w: ipv6addr value must be 16 bytes, got %d", ErrInvalidValue, len(b))
		}
		var v IPv6
		copy(v[:], b)
		return v, nil
	case TypeIPv6Prefix:
		if len(b) < 2 || len(b) > 18 {
			return nil, fmt.Errorf("%w: ipv6prefix value must be 2..18 bytes, got %d", ErrInvalidValue, len(b))
		}
		bits := b[1]
		if bits > 128 {
			return nil, fmt.Errorf("%w: ipv6prefix length %d exceeds 128", ErrInvalidValue, bits)
		}
		if int(bits+7)/8 > len(b)-2 {
			return nil, fmt.Errorf("%w: ipv6prefix length %d exceeds value bytes", ErrInvalidValue, bits)
		}
		v := IPv6Prefix{Bits: bits}
		copy(v.Addr[:], b[2:])
		return v, nil
	default:
		return nil, fmt.Errorf("%w: cannot decode data type %s", ErrInvalidValue, t)
	}
}

// Parse は人間可読テキストを指定データ型のValueに変換する。
// Octets・VendorSpecificは文字列からの構築を受け付けない。
// Integerの列挙名解決はdictionaryパッケージ側で行う（ここでは10進のみ）。
func Parse(t DataType, s string) (Value, error) {
	switch t {
	case TypeString:
		return String(s), nil
	case TypeInteger, TypeDate:
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a 32-bit unsigned integer", ErrInvalidValue, s)
		}
		if t == TypeDate {
			return Date(n), nil
		}
		return Integer(n), nil
	case TypeIPv4:
		ip := net.ParseIP(s)
		if ip == nil || ip.To4() == nil {
			return nil, fmt.Errorf("%w: %q is not an IPv4 address", ErrInvalidValue, s)
		}
		var v IPv4
		copy(v[:], ip.To4())
		return v, nil
	case TypeIPv6:
		ip := net.ParseIP(s)
		if ip == nil || ip.To4() != nil {
			return nil, fmt.Errorf("%w: %q is not an IPv6 address", ErrInvalidValue, s)
		}
		var v IPv6
		copy(v[:], ip.To16())
		return v, nil
	case TypeIPv6Prefix:
		ip, ipNet, err := net.ParseCIDR(s)
		if err != nil || ip.To4() != nil {
			return nil, fmt.Errorf("%w: %q is not an IPv6 prefix", ErrInvalidValue, s)
		}
		bits, _ := ipNet.Mask.Size()
		v := IPv6Prefix{Bits: uint8(bits)}
		copy(v.Addr[:], ip.To16())
		return v, nil
	default:
		return nil, fmt.Errorf("%w: cannot construct data type %s from string", ErrInvalidValue, t)
	}
}
