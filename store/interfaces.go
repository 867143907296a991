package store

//go:generate mockgen -source=interfaces.go -destination=mock_interfaces.go -package=store

import "context"

// ClientStore はNAS（RADIUSクライアント）の登録情報を参照する。
// サーバーのシークレット解決（server.DynamicSecretSource）から
// データグラムごとに呼ばれるため、実装は並行呼び出しに安全であること。
type ClientStore interface {
	// LookupSecret は送信元IPで登録されたNASの共有シークレットを返す。
	// 未登録のNASは(nil, false, nil)。エラーは参照先の障害のみを表し、
	// 未登録と区別される。
	LookupSecret(ctx context.Context, nasIP string) (secret []byte, ok bool, err error)
}
