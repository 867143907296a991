package server

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/oyaguma3/go-radius/store"
	"go.uber.org/mock/gomock"
)

func addrFor(ip string) net.Addr {
	return &net.UDPAddr{IP: net.ParseIP(ip), Port: 1812}
}

func TestStaticSecretSource(t *testing.T) {
	s := StaticSecretSource("shared")
	secret, err := s.RADIUSSecret(context.Background(), addrFor("10.0.0.1"))
	if err != nil {
		t.Fatalf("RADIUSSecret failed: %v", err)
	}
	if string(secret) != "shared" {
		t.Errorf("secret = %q, want shared", secret)
	}
}

func TestDynamicSecretStaticTable(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCS := store.NewMockClientStore(ctrl)
	// 静的登録が優先され、ストアは呼ばれない

	s := NewDynamicSecretSource(mockCS, nil)
	s.Register("192.168.1.100", []byte("static-secret"))

	secret, err := s.RADIUSSecret(context.Background(), addrFor("192.168.1.100"))
	if err != nil {
		t.Fatalf("RADIUSSecret failed: %v", err)
	}
	if string(secret) != "static-secret" {
		t.Errorf("secret = %q, want static-secret", secret)
	}
}

func TestDynamicSecretFromStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCS := store.NewMockClientStore(ctrl)
	mockCS.EXPECT().LookupSecret(gomock.Any(), "192.168.1.100").
		Return([]byte("store-secret"), true, nil)

	s := NewDynamicSecretSource(mockCS, nil)
	secret, err := s.RADIUSSecret(context.Background(), addrFor("192.168.1.100"))
	if err != nil {
		t.Fatalf("RADIUSSecret failed: %v", err)
	}
	if string(secret) != "store-secret" {
		t.Errorf("secret = %q, want store-secret", secret)
	}
}

func TestDynamicSecretFallbackWhenUnregistered(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCS := store.NewMockClientStore(ctrl)
	mockCS.EXPECT().LookupSecret(gomock.Any(), "10.0.0.9").
		Return(nil, false, nil)

	s := NewDynamicSecretSource(mockCS, []byte("fallback"))
	secret, err := s.RADIUSSecret(context.Background(), addrFor("10.0.0.9"))
	if err != nil {
		t.Fatalf("RADIUSSecret failed: %v", err)
	}
	if string(secret) != "fallback" {
		t.Errorf("secret = %q, want fallback", secret)
	}
}

func TestDynamicSecretFallbackOnStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCS := store.NewMockClientStore(ctrl)
	mockCS.EXPECT().LookupSecret(gomock.Any(), "10.0.0.9").
		Return(nil, false, errors.New("valkey down"))

	s := NewDynamicSecretSource(mockCS, []byte("fallback"))
	secret, err := s.RADIUSSecret(context.Background(), addrFor("10.0.0.9"))
	if err != nil {
		t.Fatalf("RADIUSSecret failed: %v", err)
	}
	if string(secret) != "fallback" {
		t.Errorf("secret = %q, want fallback", secret)
	}
}

func TestDynamicSecretNilWhenUnresolvable(t *testing.T) {
	s := NewDynamicSecretSource(nil, nil)
	secret, err := s.RADIUSSecret(context.Background(), addrFor("10.0.0.1"))
	if err != nil {
		t.Fatalf("RADIUSSecret failed: %v", err)
	}
	if secret != nil {
		t.Errorf("secret = %q, want nil", secret)
	}
}

func TestExtractIP(t *testing.T) {
	if got := extractIP(&net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 1812}); got != "10.0.0.1" {
		t.Errorf("extractIP = %q, want 10.0.0.1", got)
	}
	if got := extractIP(nil); got != "" {
		t.Errorf("extractIP(nil) = %q, want empty", got)
	}
}
