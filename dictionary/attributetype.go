// Package dictionary はRADIUS属性ディクショナリ（属性記述子のレジストリ）を提供する。
// ディクショナリは起動時に構築され、以降は不変としてワーカー間で共有される。
package dictionary

import (
	"fmt"

	"github.com/oyaguma3/go-radius/attribute"
)

// VendorNone は標準属性（ベンダー空間に属さない属性）を示すベンダーID。
const VendorNone int32 = -1

// AttributeType は1つの属性記述子を表す。
// 同一性は(vendorID, code)の組で定まる。
type AttributeType struct {
	vendorID int32
	code     uint8
	name     string
	dataType attribute.DataType
	enums    map[int32]string
}

// NewAttributeType は標準属性の記述子を生成する。
func NewAttributeType(code uint8, name string, dataType attribute.DataType) (*AttributeType, error) {
	return NewVendorAttributeType(VendorNone, code, name, dataType)
}

// NewVendorAttributeType はベンダー属性の記述子を生成する。
// コードは1〜255、名前は空であってはならない。
// 標準属性のコード26はデータ型によらずVendor-Specificコンテナとして扱う。
func NewVendorAttributeType(vendorID int32, code uint8, name string, dataType attribute.DataType) (*AttributeType, error) {
	if code < 1 {
		return nil, fmt.Errorf("%w: type code %d out of bounds", ErrInvalidAttributeType, code)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is empty", ErrInvalidAttributeType)
	}
	if vendorID == VendorNone && code == attribute.CodeVendorSpecific {
		dataType = attribute.TypeVendorSpecific
	}
	return &AttributeType{
		vendorID: vendorID,
		code:     code,
		name:     name,
		dataType: dataType,
	}, nil
}

// VendorID はベンダーIDを返す（標準属性は-1）。
func (t *AttributeType) VendorID() int32 { return t.vendorID }

// Code は属性タイプコードを返す。
func (t *AttributeType) Code() uint8 { return t.code }

// Name は属性名を返す。
func (t *AttributeType) Name() string { return t.name }

// Data は属性値のデータ型を返す。
func (t *AttributeType) Data() attribute.DataType { return t.dataType }

// EnumName は整数値に対応する列挙名を返す。
// 列挙が定義されていない、または値が未知の場合はfalseを返す。
func (t *AttributeType) EnumName(v int32) (string, bool) {
	name, ok := t.enums[v]
	return name, ok
}

// EnumValue は列挙名に対応する整数値を返す。
// 列挙集合は小さいため線形探索で解決する。
func (t *AttributeType) EnumValue(name string) (int32, bool) {
	for v, n := range t.enums {
		if n == name {
			return v, true
		}
	}
	return 0, false
}

// addEnum は列挙値を追加する（Builder経由でのみ呼ばれる）。
func (t *AttributeType) addEnum(v int32, name string) {
	if t.enums == nil {
		t.enums = make(map[int32]string)
	}
	t.enums[v] = name
}

// FromWire はワイヤ形式の値バイト列から属性を構築する。
// Vendor-Specific記述子はネスト復号が必要なため、Dictionary.DecodeValueを使う。
func (t *AttributeType) FromWire(data []byte) (attribute.Attribute, error) {
	if t.dataType == attribute.TypeVendorSpecific {
		return attribute.Attribute{}, fmt.Errorf("%w: Vendor-Specific requires nested decoding", attribute.ErrInvalidValue)
	}
	v, err := attribute.Decode(t.dataType, data)
	if err != nil {
		return attribute.Attribute{}, err
	}
	return attribute.Attribute{Code: t.code, Value: v}, nil
}

// FromBytes はユーザ指定のバイト列から属性を構築する。
// Vendor-Specific記述子はバイト列からの構築を受け付けない
// （attribute.NewVendorSpecificでネスト構築する）。
func (t *AttributeType) FromBytes(data []byte) (attribute.Attribute, error) {
	if t.dataType == attribute.TypeVendorSpecific {
		return attribute.Attribute{}, fmt.Errorf("%w: cannot build Vendor-Specific from a byte array", attribute.ErrInvalidValue)
	}
	return t.FromWire(data)
}

// FromString は人間可読テキストから属性を構築する。
// integer属性は10進数または列挙名を受け付ける。
// octets・Vendor-Specific記述子は文字列からの構築を受け付けない。
func (t *AttributeType) FromString(s string) (attribute.Attribute, error) {
	if t.dataType == attribute.TypeVendorSpecific {
		return attribute.Attribute{}, fmt.Errorf("%w: cannot build Vendor-Specific from a string", attribute.ErrInvalidValue)
	}
	if t.dataType == attribute.TypeInteger {
		if v, ok := t.EnumValue(s); ok {
			return attribute.Attribute{Code: t.code, Value: attribute.Integer(uint32(v))}, nil
		}
	}
	v, err := attribute.Parse(t.dataType, s)
	if err != nil {
		return attribute.Attribute{}, err
	}
	return attribute.Attribute{Code: t.code, Value: v}, nil
}

// Format は属性値の表示用テキストを返す。
// integer属性で列挙名が定義されている場合は名前を優先する。
func (t *AttributeType) Format(v attribute.Value) string {
	if iv, ok := v.(attribute.Integer); ok {
		if name, ok := t.EnumName(int32(iv)); ok {
			return name
		}
	}
	return v.String()
}
