package dictionary

import (
	"encoding/binary"
	"fmt"

	"github.com/oyaguma3/go-radius/attribute"
)

type typeKey struct {
	vendorID int32
	code     uint8
}

// Dictionary は(vendorID, code)および名前から属性記述子を引くレジストリ。
// Builderで構築した後は不変であり、同期なしで並行読み取りできる。
type Dictionary struct {
	byCode map[typeKey]*AttributeType
	byName map[string]*AttributeType
}

// GetByCode は(vendorID, code)に対応する記述子を返す。
// 標準属性はvendorID=VendorNoneで引く。未登録の場合はnilを返す。
func (d *Dictionary) GetByCode(vendorID int32, code uint8) *AttributeType {
	return d.byCode[typeKey{vendorID: vendorID, code: code}]
}

// GetByName は属性名（大文字小文字を区別、一意）に対応する記述子を返す。
// 未登録の場合はnilを返す。
func (d *Dictionary) GetByName(name string) *AttributeType {
	return d.byName[name]
}

// MustGetByName はGetByNameのパニック版。組み込み属性の参照に使う。
func (d *Dictionary) MustGetByName(name string) *AttributeType {
	t := d.byName[name]
	if t == nil {
		panic(fmt.Sprintf("dictionary: attribute %q not registered", name))
	}
	return t
}

// descriptor は(vendorID, code)の記述子を返し、未登録の場合は
// 合成octets記述子を生成する。未知属性はoctetsとして復号され、
// バイト単位でラウンドトリップする。
func (d *Dictionary) descriptor(vendorID int32, code uint8) *AttributeType {
	if t := d.GetByCode(vendorID, code); t != nil {
		return t
	}
	name := fmt.Sprintf("Unknown-Attribute-%d", code)
	if vendorID != VendorNone {
		name = fmt.Sprintf("Unknown-Vendor-Attribute-%d-%d", vendorID, code)
	}
	return &AttributeType{
		vendorID: vendorID,
		code:     code,
		name:     name,
		dataType: attribute.TypeOctets,
	}
}

// DecodeValue はワイヤ形式の値バイト列を型付き属性に復号する。
// データ型は記述子から引き、未知の(vendorID, code)はoctetsとして扱う。
// Vendor-Specific属性はVendor-Idを読み取った上でサブ属性を再帰的に復号する。
func (d *Dictionary) DecodeValue(vendorID int32, code uint8, data []byte) (attribute.Attribute, error) {
	t := d.descriptor(vendorID, code)
	if t.dataType != attribute.TypeVendorSpecific {
		v, err := attribute.Decode(t.dataType, data)
		if err != nil {
			return attribute.Attribute{}, err
		}
		return attribute.Attribute{Code: code, Value: v}, nil
	}

	// Vendor-Specific: [vendor-id(4)][sub-attributes...]
	if len(data) < 4 {
		return attribute.Attribute{}, fmt.Errorf("%w: Vendor-Specific value shorter than vendor id", attribute.ErrMalformedAttribute)
	}
	vid := binary.BigEndian.Uint32(data)
	raw, err := attribute.ScanWire(data[4:])
	if err != nil {
		return attribute.Attribute{}, err
	}
	sub := make([]attribute.Attribute, 0, len(raw))
	for _, r := range raw {
		a, err := d.DecodeValue(int32(vid), r.Code, r.Data)
		if err != nil {
			return attribute.Attribute{}, err
		}
		sub = append(sub, a)
	}
	return attribute.NewVendorSpecific(vid, sub), nil
}

// Builder はDictionaryを段階的に構築する。Buildの後に追加はできない。
type Builder struct {
	byCode  map[typeKey]*AttributeType
	byName  map[string]*AttributeType
	vendors map[string]int32
	err     error
}

// NewBuilder は空のBuilderを生成する。
func NewBuilder() *Builder {
	return &Builder{
		byCode:  make(map[typeKey]*AttributeType),
		byName:  make(map[string]*AttributeType),
		vendors: make(map[string]int32),
	}
}

// Attribute は記述子を登録する。(vendorID, code)と名前の両方で一意でなければならない。
func (b *Builder) Attribute(t *AttributeType) *Builder {
	if b.err != nil {
		return b
	}
	key := typeKey{vendorID: t.vendorID, code: t.code}
	if _, dup := b.byCode[key]; dup {
		b.err = fmt.Errorf("%w: duplicate attribute code %d (vendor %d)", ErrDuplicateAttribute, t.code, t.vendorID)
		return b
	}
	if _, dup := b.byName[t.name]; dup {
		b.err = fmt.Errorf("%w: duplicate attribute name %q", ErrDuplicateAttribute, t.name)
		return b
	}
	b.byCode[key] = t
	b.byName[t.name] = t
	return b
}

// MustAttribute は記述子を生成して登録する。組み込みディクショナリ定義用。
func (b *Builder) MustAttribute(vendorID int32, code uint8, name string, dataType attribute.DataType) *Builder {
	t, err := NewVendorAttributeType(vendorID, code, name, dataType)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	return b.Attribute(t)
}

// Value は登録済み属性に列挙値を追加する。
func (b *Builder) Value(attrName, valueName string, v int32) *Builder {
	if b.err != nil {
		return b
	}
	t, ok := b.byName[attrName]
	if !ok {
		b.err = fmt.Errorf("%w: VALUE for unknown attribute %q", ErrUnknownAttribute, attrName)
		return b
	}
	t.addEnum(v, valueName)
	return b
}

// Vendor はベンダー名とIDの対応を登録する（パーサのBEGIN-VENDOR解決用）。
func (b *Builder) Vendor(name string, id int32) *Builder {
	if b.err != nil {
		return b
	}
	if _, dup := b.vendors[name]; dup {
		b.err = fmt.Errorf("%w: duplicate vendor %q", ErrDuplicateAttribute, name)
		return b
	}
	b.vendors[name] = id
	return b
}

// vendorID はベンダー名からIDを引く。
func (b *Builder) vendorID(name string) (int32, bool) {
	id, ok := b.vendors[name]
	return id, ok
}

// Build はレジストリを確定してDictionaryを返す。
func (b *Builder) Build() (*Dictionary, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Dictionary{byCode: b.byCode, byName: b.byName}, nil
}
