package dictionary

import "errors"

// ディクショナリ構築エラー
var (
	// ErrInvalidAttributeType は記述子の生成パラメータが不正な場合のエラー
	ErrInvalidAttributeType = errors.New("invalid attribute type")

	// ErrDuplicateAttribute は(vendorID, code)または名前が重複した場合のエラー
	ErrDuplicateAttribute = errors.New("duplicate attribute")

	// ErrUnknownAttribute は未登録属性への参照（VALUE行など）のエラー
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrParse はディクショナリファイルの構文エラー
	ErrParse = errors.New("dictionary parse error")
)
