package attribute

import "errors"

// 属性の構築・復号エラー
var (
	// ErrInvalidValue は型付きコンストラクタに不正なサイズ・形式の
	// バイト列や文字列が渡された場合のエラー
	ErrInvalidValue = errors.New("invalid attribute value")

	// ErrMalformedAttribute は属性長が2未満、または親バッファを
	// 超過する場合のエラー
	ErrMalformedAttribute = errors.New("malformed attribute")
)
