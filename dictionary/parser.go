package dictionary

import (
	"bufio"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/oyaguma3/go-radius/attribute"
)

// dataTypeNames はディクショナリファイル上の型名とDataTypeの対応。
var dataTypeNames = map[string]attribute.DataType{
	"string":     attribute.TypeString,
	"octets":     attribute.TypeOctets,
	"integer":    attribute.TypeInteger,
	"date":       attribute.TypeDate,
	"ipaddr":     attribute.TypeIPv4,
	"ipv6addr":   attribute.TypeIPv6,
	"ipv6prefix": attribute.TypeIPv6Prefix,
	"vsa":        attribute.TypeVendorSpecific,
}

// Parse はFreeRADIUS形式のディクショナリファイルを読み込み、
// Dictionaryを構築する。$INCLUDEはfsys上のファイル相対パスで解決する。
//
// 対応する行: ATTRIBUTE / VALUE / VENDOR / BEGIN-VENDOR / END-VENDOR / $INCLUDE
func Parse(fsys fs.FS, name string) (*Dictionary, error) {
	b := NewBuilder()
	if err := ParseInto(b, fsys, name); err != nil {
		return nil, err
	}
	return b.Build()
}

// ParseInto は既存のBuilderにディクショナリファイルの内容を追加する。
// 組み込みディクショナリにベンダー定義を重ねる用途に使う。
func ParseInto(b *Builder, fsys fs.FS, name string) error {
	p := &parser{builder: b, fsys: fsys}
	return p.parseFile(name)
}

type parser struct {
	builder *Builder
	fsys    fs.FS
	vendor  int32 // 現在のBEGIN-VENDORコンテキスト（なければVendorNone扱い）
	inBlock bool
}

func (p *parser) parseFile(name string) error {
	f, err := p.fsys.Open(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if err := p.parseLine(name, fields); err != nil {
			return fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

func (p *parser) parseLine(file string, fields []string) error {
	switch fields[0] {
	case "ATTRIBUTE":
		if len(fields) < 4 {
			return fmt.Errorf("%w: ATTRIBUTE needs <name> <code> <type>", ErrParse)
		}
		code, err := strconv.ParseUint(fields[2], 10, 8)
		if err != nil {
			return fmt.Errorf("%w: bad attribute code %q", ErrParse, fields[2])
		}
		dt, ok := dataTypeNames[strings.ToLower(fields[3])]
		if !ok {
			return fmt.Errorf("%w: unknown data type %q", ErrParse, fields[3])
		}
		vendorID := VendorNone
		if p.inBlock {
			vendorID = p.vendor
		}
		t, err := NewVendorAttributeType(vendorID, uint8(code), fields[1], dt)
		if err != nil {
			return err
		}
		p.builder.Attribute(t)
		return p.builder.err

	case "VALUE":
		if len(fields) < 4 {
			return fmt.Errorf("%w: VALUE needs <attr-name> <value-name> <int>", ErrParse)
		}
		v, err := strconv.ParseInt(fields[3], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: bad enum value %q", ErrParse, fields[3])
		}
		p.builder.Value(fields[1], fields[2], int32(v))
		return p.builder.err

	case "VENDOR":
		if len(fields) < 3 {
			return fmt.Errorf("%w: VENDOR needs <name> <id>", ErrParse)
		}
		id, err := strconv.ParseInt(fields[2], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: bad vendor id %q", ErrParse, fields[2])
		}
		p.builder.Vendor(fields[1], int32(id))
		return p.builder.err

	case "BEGIN-VENDOR":
		if len(fields) < 2 {
			return fmt.Errorf("%w: BEGIN-VENDOR needs <name>", ErrParse)
		}
		id, ok := p.builder.vendorID(fields[1])
		if !ok {
			return fmt.Errorf("%w: BEGIN-VENDOR for undeclared vendor %q", ErrParse, fields[1])
		}
		if p.inBlock {
			return fmt.Errorf("%w: nested BEGIN-VENDOR", ErrParse)
		}
		p.vendor = id
		p.inBlock = true
		return nil

	case "END-VENDOR":
		if !p.inBlock {
			return fmt.Errorf("%w: END-VENDOR without BEGIN-VENDOR", ErrParse)
		}
		p.inBlock = false
		return nil

	case "$INCLUDE":
		if len(fields) < 2 {
			return fmt.Errorf("%w: $INCLUDE needs <path>", ErrParse)
		}
		target := fields[1]
		if !path.IsAbs(target) {
			target = path.Join(path.Dir(file), target)
		}
		return p.parseFile(target)

	default:
		return fmt.Errorf("%w: unknown keyword %q", ErrParse, fields[0])
	}
}
