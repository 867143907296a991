package main

import (
	"context"
	"log/slog"

	"github.com/oyaguma3/go-radius/attribute"
	"github.com/oyaguma3/go-radius/packet"
	"github.com/oyaguma3/go-radius/server"
)

// authHandler はPAP（User-Name + User-Password）のAccess-Requestを処理する。
type authHandler struct {
	backend *SubscriberClient
}

// ServeRADIUS はAccess-Requestを認証してAccept/Rejectを返す。
// Accounting-Requestには空のAccounting-Responseを返す。
func (h *authHandler) ServeRADIUS(w server.ResponseWriter, r *server.Request) {
	switch r.Packet.Code {
	case packet.CodeAccessRequest:
		h.handleAccessRequest(w, r)
	case packet.CodeAccountingRequest:
		_ = w.Write(r.Packet.Response(packet.CodeAccountingResponse))
	}
}

func (h *authHandler) handleAccessRequest(w server.ResponseWriter, r *server.Request) {
	username, ok := r.Packet.Get(attribute.CodeUserName)
	if !ok {
		slog.Warn("access-request without User-Name",
			"event_id", "AUTH_NO_USERNAME",
			"trace_id", r.TraceID,
		)
		_ = w.Write(reject(r, "missing User-Name"))
		return
	}

	hidden, ok := r.Packet.Get(attribute.CodeUserPassword)
	if !ok {
		slog.Warn("access-request without User-Password",
			"event_id", "AUTH_NO_PASSWORD",
			"trace_id", r.TraceID,
		)
		_ = w.Write(reject(r, "missing User-Password"))
		return
	}

	password, err := packet.RevealPassword(hidden.Encode(), r.Secret, r.Packet.Authenticator)
	if err != nil {
		slog.Warn("failed to reveal User-Password",
			"event_id", "AUTH_BAD_PASSWORD_ATTR",
			"trace_id", r.TraceID,
			"error", err,
		)
		_ = w.Write(reject(r, "malformed User-Password"))
		return
	}

	ctx := context.Background()
	allow, err := h.backend.Authenticate(ctx, username.String(), string(password))
	if err != nil {
		slog.Error("subscriber API error",
			"event_id", "AUTH_BACKEND_ERR",
			"trace_id", r.TraceID,
			"error", err,
		)
		// バックエンド障害時は応答なし（クライアント側の再送に委ねる）
		return
	}

	if !allow {
		slog.Info("authentication rejected",
			"event_id", "AUTH_REJECT",
			"trace_id", r.TraceID,
			"user_name", username.String(),
		)
		_ = w.Write(reject(r, "authentication failed"))
		return
	}

	slog.Info("authentication accepted",
		"event_id", "AUTH_ACCEPT",
		"trace_id", r.TraceID,
		"user_name", username.String(),
	)
	resp := r.Packet.Response(packet.CodeAccessAccept)
	_ = w.Write(resp)
}

func reject(r *server.Request, msg string) *packet.Packet {
	resp := r.Packet.Response(packet.CodeAccessReject)
	resp.Add(attribute.New(attribute.CodeReplyMessage, attribute.String(msg)))
	return resp
}
