// Package main はRADIUSサーバーの疎通確認用テストクライアント。
// Access-Requestを送信し、必要に応じてAccountingのStart/Stopを送る。
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/oyaguma3/go-radius/attribute"
	"github.com/oyaguma3/go-radius/client"
	"github.com/oyaguma3/go-radius/dictionary"
	"github.com/oyaguma3/go-radius/packet"
)

// Config はテストクライアントの設定を保持する
type Config struct {
	ServerAddr string        `envconfig:"SERVER_ADDR" default:"127.0.0.1:1812"`
	Secret     string        `envconfig:"RADIUS_SECRET" required:"true"`
	Username   string        `envconfig:"RADIUS_USERNAME" required:"true"`
	Password   string        `envconfig:"RADIUS_PASSWORD" required:"true"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"10s"`
	Accounting bool          `envconfig:"SEND_ACCOUNTING" default:"false"`
	AcctAddr   string        `envconfig:"ACCT_ADDR" default:"127.0.0.1:1813"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		slog.Error("failed to open socket", "error", err)
		os.Exit(1)
	}
	c := client.New(conn)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := run(ctx, c, &cfg); err != nil {
		slog.Error("request failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, cfg *Config) error {
	addr, err := net.ResolveUDPAddr("udp", cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("bad server address: %w", err)
	}
	ep := client.Endpoint{Addr: addr, Secret: []byte(cfg.Secret)}

	// Access-Request: User-PasswordはSendが秘匿形式に変換する
	req := packet.New(packet.CodeAccessRequest, 0)
	req.Add(attribute.New(attribute.CodeUserName, attribute.String(cfg.Username)))
	req.Add(attribute.New(attribute.CodeUserPassword, attribute.String(cfg.Password)))
	req.Add(attribute.New(attribute.CodeNASIdentifier, attribute.String("radclient")))
	req.AddMessageAuthenticator()

	resp, err := c.Exchange(ctx, req, ep)
	if err != nil {
		return err
	}
	fmt.Printf("%s (identifier=%d)\n", resp.Code, resp.Identifier)
	if msg, ok := resp.Get(attribute.CodeReplyMessage); ok {
		fmt.Printf("Reply-Message: %s\n", msg)
	}

	if resp.Code != packet.CodeAccessAccept || !cfg.Accounting {
		return nil
	}

	// Accounting Start/Stop
	acctAddr, err := net.ResolveUDPAddr("udp", cfg.AcctAddr)
	if err != nil {
		return fmt.Errorf("bad accounting address: %w", err)
	}
	acctEP := client.Endpoint{Addr: acctAddr, Secret: []byte(cfg.Secret)}
	sessionID := uuid.New().String()

	statusType := dictionary.Default().MustGetByName("Acct-Status-Type")
	for _, status := range []string{"Start", "Stop"} {
		statusAttr, err := statusType.FromString(status)
		if err != nil {
			return err
		}
		acct := packet.New(packet.CodeAccountingRequest, 0)
		acct.Add(attribute.New(attribute.CodeUserName, attribute.String(cfg.Username)))
		acct.Add(attribute.New(attribute.CodeAcctSessionID, attribute.String(sessionID)))
		acct.Add(statusAttr)

		resp, err := c.Exchange(ctx, acct, acctEP)
		if err != nil {
			return fmt.Errorf("accounting %s failed: %w", status, err)
		}
		fmt.Printf("%s for Acct-Status-Type=%s\n", resp.Code, status)
	}
	return nil
}
