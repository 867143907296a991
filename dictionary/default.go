package dictionary

import (
	"sync"

	"github.com/oyaguma3/go-radius/attribute"
)

var (
	defaultOnce sync.Once
	defaultDict *Dictionary
)

// Default はRFC 2865/2866/2869の主要属性を登録した組み込みディクショナリを返す。
// 初回呼び出しで構築され、以降は同一インスタンスを共有する。
func Default() *Dictionary {
	defaultOnce.Do(func() {
		b := NewBuilder().
			MustAttribute(VendorNone, 1, "User-Name", attribute.TypeString).
			MustAttribute(VendorNone, 2, "User-Password", attribute.TypeOctets).
			MustAttribute(VendorNone, 3, "CHAP-Password", attribute.TypeOctets).
			MustAttribute(VendorNone, 4, "NAS-IP-Address", attribute.TypeIPv4).
			MustAttribute(VendorNone, 5, "NAS-Port", attribute.TypeInteger).
			MustAttribute(VendorNone, 6, "Service-Type", attribute.TypeInteger).
			MustAttribute(VendorNone, 7, "Framed-Protocol", attribute.TypeInteger).
			MustAttribute(VendorNone, 8, "Framed-IP-Address", attribute.TypeIPv4).
			MustAttribute(VendorNone, 9, "Framed-IP-Netmask", attribute.TypeIPv4).
			MustAttribute(VendorNone, 18, "Reply-Message", attribute.TypeString).
			MustAttribute(VendorNone, 24, "State", attribute.TypeOctets).
			MustAttribute(VendorNone, 25, "Class", attribute.TypeOctets).
			MustAttribute(VendorNone, 26, "Vendor-Specific", attribute.TypeVendorSpecific).
			MustAttribute(VendorNone, 27, "Session-Timeout", attribute.TypeInteger).
			MustAttribute(VendorNone, 28, "Idle-Timeout", attribute.TypeInteger).
			MustAttribute(VendorNone, 30, "Called-Station-Id", attribute.TypeString).
			MustAttribute(VendorNone, 31, "Calling-Station-Id", attribute.TypeString).
			MustAttribute(VendorNone, 32, "NAS-Identifier", attribute.TypeString).
			MustAttribute(VendorNone, 33, "Proxy-State", attribute.TypeOctets).
			MustAttribute(VendorNone, 40, "Acct-Status-Type", attribute.TypeInteger).
			MustAttribute(VendorNone, 41, "Acct-Delay-Time", attribute.TypeInteger).
			MustAttribute(VendorNone, 42, "Acct-Input-Octets", attribute.TypeInteger).
			MustAttribute(VendorNone, 43, "Acct-Output-Octets", attribute.TypeInteger).
			MustAttribute(VendorNone, 44, "Acct-Session-Id", attribute.TypeString).
			MustAttribute(VendorNone, 46, "Acct-Session-Time", attribute.TypeInteger).
			MustAttribute(VendorNone, 49, "Acct-Terminate-Cause", attribute.TypeInteger).
			MustAttribute(VendorNone, 55, "Event-Timestamp", attribute.TypeDate).
			MustAttribute(VendorNone, 61, "NAS-Port-Type", attribute.TypeInteger).
			MustAttribute(VendorNone, 79, "EAP-Message", attribute.TypeOctets).
			MustAttribute(VendorNone, 80, "Message-Authenticator", attribute.TypeOctets).
			MustAttribute(VendorNone, 95, "NAS-IPv6-Address", attribute.TypeIPv6).
			MustAttribute(VendorNone, 97, "Framed-IPv6-Prefix", attribute.TypeIPv6Prefix).
			Value("Service-Type", "Login-User", 1).
			Value("Service-Type", "Framed-User", 2).
			Value("Service-Type", "Authenticate-Only", 8).
			Value("Acct-Status-Type", "Start", 1).
			Value("Acct-Status-Type", "Stop", 2).
			Value("Acct-Status-Type", "Interim-Update", 3).
			Value("Acct-Status-Type", "Accounting-On", 7).
			Value("Acct-Status-Type", "Accounting-Off", 8).
			Value("NAS-Port-Type", "Async", 0).
			Value("NAS-Port-Type", "Virtual", 5).
			Value("NAS-Port-Type", "Ethernet", 15).
			Value("NAS-Port-Type", "Wireless-802.11", 19)

		d, err := b.Build()
		if err != nil {
			panic(err)
		}
		defaultDict = d
	})
	return defaultDict
}
