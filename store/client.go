package store

import (
	"context"
	"fmt"
)

// KeyPrefixNAS はNAS登録情報のキープレフィックス。
// 登録は "radius:nas:<ip>" のハッシュで、少なくともsecretフィールドを持つ。
// nameなど他のフィールドは運用ツール側の自由とし、ここでは関知しない。
const KeyPrefixNAS = "radius:nas:"

// valkeyClientStore はValkeyハッシュを参照するClientStore実装。
type valkeyClientStore struct {
	vc *ValkeyClient
}

// NewClientStore はValkeyを参照先とするClientStoreを生成する。
func NewClientStore(vc *ValkeyClient) ClientStore {
	return &valkeyClientStore{vc: vc}
}

// LookupSecret はNASハッシュ全体を読み、secretフィールドを取り出す。
// ハッシュが存在しない場合やsecretが空の場合は未登録として扱う
// （HGetAllは未存在キーでもエラーにならず空マップを返す）。
func (s *valkeyClientStore) LookupSecret(ctx context.Context, nasIP string) ([]byte, bool, error) {
	fields, err := s.vc.Client().HGetAll(ctx, KeyPrefixNAS+nasIP).Result()
	if err != nil {
		return nil, false, fmt.Errorf("%w: lookup nas %s: %v", ErrValkeyUnavailable, nasIP, err)
	}
	secret := fields["secret"]
	if secret == "" {
		return nil, false, nil
	}
	return []byte(secret), true, nil
}
