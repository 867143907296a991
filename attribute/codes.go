package attribute

// よく使う標準属性のタイプコード（RFC 2865/2866/2869）
const (
	CodeUserName             uint8 = 1
	CodeUserPassword         uint8 = 2
	CodeNASIPAddress         uint8 = 4
	CodeReplyMessage         uint8 = 18
	CodeState                uint8 = 24
	CodeClass                uint8 = 25
	CodeSessionTimeout       uint8 = 27
	CodeCalledStationID      uint8 = 30
	CodeCallingStationID     uint8 = 31
	CodeNASIdentifier        uint8 = 32
	CodeProxyState           uint8 = 33
	CodeAcctStatusType       uint8 = 40
	CodeAcctSessionID        uint8 = 44
	CodeEAPMessage           uint8 = 79
	CodeMessageAuthenticator uint8 = 80
)
