package server

import (
	"bytes"
	"context"
	"net"
	"testing"

	"github.com/oyaguma3/go-radius/attribute"
	"github.com/oyaguma3/go-radius/dictionary"
	"github.com/oyaguma3/go-radius/packet"
)

var (
	testSecret = []byte("testing123")
	testSource = &net.UDPAddr{IP: net.IPv4(192, 0, 2, 10), Port: 50000}
)

// acceptAll はAccess-RequestをAccept、Accounting-RequestをResponseで返すハンドラ。
func acceptAll() Handler {
	return HandlerFunc(func(w ResponseWriter, r *Request) {
		switch r.Packet.Code {
		case packet.CodeAccessRequest:
			resp := r.Packet.Response(packet.CodeAccessAccept)
			resp.Add(attribute.New(attribute.CodeReplyMessage, attribute.String("ok")))
			_ = w.Write(resp)
		case packet.CodeAccountingRequest:
			_ = w.Write(r.Packet.Response(packet.CodeAccountingResponse))
		}
	})
}

func newTestPacketServer(h Handler) *PacketServer {
	return &PacketServer{
		Handler:      h,
		SecretSource: StaticSecretSource(testSecret),
	}
}

func encodeAccessRequest(t *testing.T, id uint8, attrs ...attribute.Attribute) ([]byte, [16]byte) {
	t.Helper()
	req := packet.New(packet.CodeAccessRequest, id)
	auth, err := packet.GenerateRequestAuthenticator()
	if err != nil {
		t.Fatalf("GenerateRequestAuthenticator failed: %v", err)
	}
	req.Authenticator = auth
	for _, a := range attrs {
		req.Add(a)
	}
	wire, err := req.Encode(testSecret, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return wire, auth
}

func TestHandleAccessRequest(t *testing.T) {
	s := newTestPacketServer(acceptAll())
	wire, requestAuth := encodeAccessRequest(t, 42,
		attribute.New(attribute.CodeUserName, attribute.String("nemo")))

	out := s.Handle(context.Background(), wire, testSource)
	if out == nil {
		t.Fatal("Handle returned no response")
	}

	resp, err := packet.Decode(out, dictionary.Default())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if resp.Code != packet.CodeAccessAccept {
		t.Errorf("code = %v, want Access-Accept", resp.Code)
	}
	// Identifierはリクエストから引き継がれる
	if resp.Identifier != 42 {
		t.Errorf("identifier = %d, want 42", resp.Identifier)
	}
	// Response Authenticatorが成立している
	if !packet.VerifyResponseAuthenticator(out, requestAuth, testSecret) {
		t.Error("response authenticator invalid")
	}
	// Access系応答にはMessage-Authenticatorが付与される
	if !packet.VerifyMessageAuthenticator(out, requestAuth[:], testSecret) {
		t.Error("response message authenticator invalid")
	}
}

func TestHandleAccessRequestWithValidMA(t *testing.T) {
	s := newTestPacketServer(acceptAll())

	req := packet.New(packet.CodeAccessRequest, 7)
	auth, _ := packet.GenerateRequestAuthenticator()
	req.Authenticator = auth
	req.Add(attribute.New(attribute.CodeUserName, attribute.String("nemo")))
	req.AddMessageAuthenticator()
	wire, err := req.Encode(testSecret, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if out := s.Handle(context.Background(), wire, testSource); out == nil {
		t.Error("Handle dropped request with valid Message-Authenticator")
	}

	// 改竄されたMessage-Authenticatorは破棄される
	tampered := bytes.Clone(wire)
	tampered[len(tampered)-1] ^= 0xff
	if out := s.Handle(context.Background(), tampered, testSource); out != nil {
		t.Error("Handle responded to request with invalid Message-Authenticator")
	}
}

func TestHandleAccountingRequest(t *testing.T) {
	s := newTestPacketServer(acceptAll())

	req := packet.New(packet.CodeAccountingRequest, 5)
	req.Add(attribute.New(attribute.CodeAcctSessionID, attribute.String("sess-1")))
	req.Add(attribute.New(attribute.CodeAcctStatusType, attribute.Integer(1)))
	wire, err := req.Encode(testSecret, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out := s.Handle(context.Background(), wire, testSource)
	if out == nil {
		t.Fatal("Handle returned no response")
	}
	resp, err := packet.Decode(out, dictionary.Default())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if resp.Code != packet.CodeAccountingResponse {
		t.Errorf("code = %v, want Accounting-Response", resp.Code)
	}
	var requestAuth [16]byte
	copy(requestAuth[:], wire[4:20])
	if !packet.VerifyResponseAuthenticator(out, requestAuth, testSecret) {
		t.Error("response authenticator invalid")
	}
}

func TestHandleAccountingRequestBadAuthenticator(t *testing.T) {
	s := newTestPacketServer(acceptAll())

	req := packet.New(packet.CodeAccountingRequest, 5)
	req.Add(attribute.New(attribute.CodeAcctSessionID, attribute.String("sess-1")))
	wire, err := req.Encode(testSecret, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	// Request Authenticatorを改竄
	wire[4] ^= 0xff

	if out := s.Handle(context.Background(), wire, testSource); out != nil {
		t.Error("Handle responded to accounting request with bad authenticator")
	}
}

func TestHandleUnknownSecretDropped(t *testing.T) {
	s := &PacketServer{
		Handler:      acceptAll(),
		SecretSource: NewDynamicSecretSource(nil, nil), // 解決先なし
	}
	wire, _ := encodeAccessRequest(t, 1)
	if out := s.Handle(context.Background(), wire, testSource); out != nil {
		t.Error("Handle responded despite unknown secret")
	}
}

func TestHandleMalformedDropped(t *testing.T) {
	s := newTestPacketServer(acceptAll())
	if out := s.Handle(context.Background(), []byte{1, 2, 3}, testSource); out != nil {
		t.Error("Handle responded to malformed datagram")
	}
}

func TestHandleUnknownCodeDropped(t *testing.T) {
	s := newTestPacketServer(acceptAll())
	// Access-Accept（コード2）はサーバーへのリクエストとしては扱わない
	wire := make([]byte, 20)
	wire[0] = 2
	wire[1] = 1
	wire[3] = 20
	if out := s.Handle(context.Background(), wire, testSource); out != nil {
		t.Error("Handle responded to non-request code")
	}
}

func TestHandleStatusServer(t *testing.T) {
	s := newTestPacketServer(nil) // Status-Serverはハンドラなしでも応答する

	req := packet.New(packet.CodeStatusServer, 9)
	auth, _ := packet.GenerateRequestAuthenticator()
	req.Authenticator = auth
	req.AddMessageAuthenticator()
	wire, err := req.Encode(testSecret, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out := s.Handle(context.Background(), wire, testSource)
	if out == nil {
		t.Fatal("Handle returned no response to Status-Server")
	}
	resp, err := packet.Decode(out, dictionary.Default())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if resp.Code != packet.CodeAccessAccept || resp.Identifier != 9 {
		t.Errorf("response = %v id=%d, want Access-Accept id=9", resp.Code, resp.Identifier)
	}
	if !packet.VerifyResponseAuthenticator(out, auth, testSecret) {
		t.Error("response authenticator invalid")
	}
}

func TestHandleStatusServerRequiresMA(t *testing.T) {
	s := newTestPacketServer(nil)
	// Message-AuthenticatorなしのStatus-Serverは破棄される（RFC 5997）
	wire, _ := encodeAccessRequest(t, 9)
	wire[0] = byte(packet.CodeStatusServer)
	if out := s.Handle(context.Background(), wire, testSource); out != nil {
		t.Error("Handle responded to Status-Server without Message-Authenticator")
	}
}

func TestProxyStateEchoedInOrder(t *testing.T) {
	s := newTestPacketServer(acceptAll())
	wire, _ := encodeAccessRequest(t, 3,
		attribute.New(attribute.CodeProxyState, attribute.Octets("proxy-a")),
		attribute.New(attribute.CodeUserName, attribute.String("nemo")),
		attribute.New(attribute.CodeProxyState, attribute.Octets("proxy-b")),
	)

	out := s.Handle(context.Background(), wire, testSource)
	if out == nil {
		t.Fatal("Handle returned no response")
	}
	resp, err := packet.Decode(out, dictionary.Default())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	states := resp.GetAll(attribute.CodeProxyState)
	if len(states) != 2 {
		t.Fatalf("proxy states = %d, want 2", len(states))
	}
	if string(states[0].Encode()) != "proxy-a" || string(states[1].Encode()) != "proxy-b" {
		t.Errorf("proxy state order = %q %q", states[0].Encode(), states[1].Encode())
	}
}

func TestHandlerNoResponse(t *testing.T) {
	s := newTestPacketServer(HandlerFunc(func(w ResponseWriter, r *Request) {
		// 応答しない
	}))
	wire, _ := encodeAccessRequest(t, 1)
	if out := s.Handle(context.Background(), wire, testSource); out != nil {
		t.Error("Handle produced a response the handler never wrote")
	}
}
