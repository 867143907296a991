package attribute

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeInteger(t *testing.T) {
	v, err := Decode(TypeInteger, []byte{0x00, 0x00, 0x01, 0x2c})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v.(Integer) != 300 {
		t.Errorf("Decode = %v, want 300", v)
	}
	if v.String() != "300" {
		t.Errorf("String() = %q, want %q", v.String(), "300")
	}
}

func TestDecodeIntegerWrongSize(t *testing.T) {
	// integerはちょうど4バイトでなければならない
	for _, size := range []int{0, 1, 3, 5} {
		_, err := Decode(TypeInteger, make([]byte, size))
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Decode(%d bytes) error = %v, want ErrInvalidValue", size, err)
		}
	}
}

func TestDecodeIPv4(t *testing.T) {
	v, err := Decode(TypeIPv4, []byte{192, 0, 2, 1})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v.String() != "192.0.2.1" {
		t.Errorf("String() = %q, want %q", v.String(), "192.0.2.1")
	}
	if _, err := Decode(TypeIPv4, []byte{192, 0, 2}); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Decode(3 bytes) error = %v, want ErrInvalidValue", err)
	}
}

func TestDecodeIPv6WrongSize(t *testing.T) {
	if _, err := Decode(TypeIPv6, make([]byte, 15)); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Decode(15 bytes) error = %v, want ErrInvalidValue", err)
	}
}

func TestDecodeIPv6Prefix(t *testing.T) {
	// [reserved][prefix-len][address...] 形式
	b := []byte{0x00, 0x20, 0x20, 0x01, 0x0d, 0xb8}
	v, err := Decode(TypeIPv6Prefix, b)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	p := v.(IPv6Prefix)
	if p.Bits != 32 {
		t.Errorf("Bits = %d, want 32", p.Bits)
	}
	if p.String() != "2001:db8::/32" {
		t.Errorf("String() = %q, want %q", p.String(), "2001:db8::/32")
	}
	// 再符号化はプレフィックス長ぶんだけ出力する
	if !bytes.Equal(p.Encode(), b) {
		t.Errorf("Encode() = %x, want %x", p.Encode(), b)
	}
}

func TestDecodeIPv6PrefixBounds(t *testing.T) {
	cases := []struct {
		name string
		b    []byte
	}{
		{"too short", []byte{0x00}},
		{"too long", make([]byte, 19)},
		{"prefix over 128", []byte{0x00, 0x81}},
		{"prefix exceeds bytes", []byte{0x00, 0x40, 0x20}},
	}
	for _, tc := range cases {
		if _, err := Decode(TypeIPv6Prefix, tc.b); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("%s: error = %v, want ErrInvalidValue", tc.name, err)
		}
	}
}

func TestParseIntegerDecimal(t *testing.T) {
	v, err := Parse(TypeInteger, "42")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if v.(Integer) != 42 {
		t.Errorf("Parse = %v, want 42", v)
	}
	if _, err := Parse(TypeInteger, "not-a-number"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Parse error = %v, want ErrInvalidValue", err)
	}
}

func TestParseIPv4DottedQuad(t *testing.T) {
	v, err := Parse(TypeIPv4, "10.0.0.1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !bytes.Equal(v.Encode(), []byte{10, 0, 0, 1}) {
		t.Errorf("Encode() = %x, want 0a000001", v.Encode())
	}
	if _, err := Parse(TypeIPv4, "2001:db8::1"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Parse(v6 as v4) error = %v, want ErrInvalidValue", err)
	}
}

func TestParseOctetsRejected(t *testing.T) {
	// octetsは文字列からの構築を受け付けない
	if _, err := Parse(TypeOctets, "deadbeef"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Parse(octets) error = %v, want ErrInvalidValue", err)
	}
}

func TestParseVendorSpecificRejected(t *testing.T) {
	if _, err := Parse(TypeVendorSpecific, "anything"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Parse(vsa) error = %v, want ErrInvalidValue", err)
	}
}

func TestDateSharesIntegerRepresentation(t *testing.T) {
	b := []byte{0x5f, 0x00, 0x00, 0x00}
	d, err := Decode(TypeDate, b)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	i, err := Decode(TypeInteger, b)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(d.Encode(), i.Encode()) {
		t.Error("date and integer wire representations differ")
	}
	// dateはepoch秒として表示する
	if d.String() != "1593835520" {
		t.Errorf("String() = %q, want %q", d.String(), "1593835520")
	}
}

func TestVendorSpecificEncode(t *testing.T) {
	// vendor-id 9 (Cisco), サブ属性1 = "shell:priv-lvl=15"
	avpair := "shell:priv-lvl=15"
	a := NewVendorSpecific(9, []Attribute{
		{Code: 1, Value: String(avpair)},
	})
	if a.Code != CodeVendorSpecific {
		t.Errorf("Code = %d, want 26", a.Code)
	}
	got := a.Value.Encode()
	want := append([]byte{0x00, 0x00, 0x00, 0x09, 0x01, byte(2 + len(avpair))}, avpair...)
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = %x, want %x", got, want)
	}
}

func TestScanWire(t *testing.T) {
	// User-Name "nemo" + NAS-Port 3
	b := []byte{
		1, 6, 'n', 'e', 'm', 'o',
		5, 6, 0, 0, 0, 3,
	}
	attrs, err := ScanWire(b)
	if err != nil {
		t.Fatalf("ScanWire failed: %v", err)
	}
	if len(attrs) != 2 {
		t.Fatalf("len = %d, want 2", len(attrs))
	}
	if attrs[0].Code != 1 || string(attrs[0].Data) != "nemo" {
		t.Errorf("attrs[0] = %+v", attrs[0])
	}
	if attrs[1].Code != 5 || len(attrs[1].Data) != 4 {
		t.Errorf("attrs[1] = %+v", attrs[1])
	}
}

func TestScanWireMalformed(t *testing.T) {
	cases := []struct {
		name string
		b    []byte
	}{
		{"length below minimum", []byte{1, 1}},
		{"length zero", []byte{1, 0}},
		{"overruns buffer", []byte{1, 10, 'x'}},
		{"truncated header", []byte{1}},
	}
	for _, tc := range cases {
		if _, err := ScanWire(tc.b); !errors.Is(err, ErrMalformedAttribute) {
			t.Errorf("%s: error = %v, want ErrMalformedAttribute", tc.name, err)
		}
	}
}
