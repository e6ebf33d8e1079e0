// internal/smtp/gateway.go
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leadmasterhq/leadmaster-backend/internal/config"
	appErrors "github.com/leadmasterhq/leadmaster-backend/internal/errors"
)

// Message is one composed outbound email.
type Message struct {
	FromName  string
	FromEmail string
	To        string
	Subject   string
	HTML      string
}

// Gateway is the external SMTP collaborator contract. Verify must succeed
// before any batch starts; Send returns a provider message ID.
type Gateway interface {
	Verify(ctx context.Context) error
	Send(ctx context.Context, msg Message) (string, error)
}

// SMTPGateway talks to a real SMTP server. The dial timeout from
// configuration bounds every handshake and send.
type SMTPGateway struct {
	cfg config.SMTPConfig
}

func NewGateway(cfg config.SMTPConfig) *SMTPGateway {
	return &SMTPGateway{cfg: cfg}
}

var _ Gateway = (*SMTPGateway)(nil)

func (g *SMTPGateway) addr() string {
	return fmt.Sprintf("%s:%d", g.cfg.Host, g.cfg.Port)
}

// dial opens a client, upgrades to TLS when the server offers it, and
// authenticates. Port 465 is implicit TLS, everything else starts plain.
func (g *SMTPGateway) dial(ctx context.Context) (*smtp.Client, error) {
	timeout := g.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remain := time.Until(deadline); remain < timeout {
			timeout = remain
		}
	}

	var conn net.Conn
	var err error
	dialer := &net.Dialer{Timeout: timeout}
	if g.cfg.Port == 465 {
		conn, err = tls.DialWithDialer(dialer, "tcp", g.addr(), &tls.Config{ServerName: g.cfg.Host})
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", g.addr())
	}
	if err != nil {
		return nil, fmt.Errorf("smtp dial %s: %w", g.addr(), err)
	}
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp set deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, g.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}

	if g.cfg.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: g.cfg.Host}); err != nil {
				client.Close()
				return nil, fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}

	if g.cfg.User != "" {
		auth := smtp.PlainAuth("", g.cfg.User, g.cfg.Password, g.cfg.Host)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}

	return client, nil
}

// Verify performs the full handshake including auth, then quits. It is the
// fail-fast check that gates every delivery batch.
func (g *SMTPGateway) Verify(ctx context.Context) error {
	client, err := g.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Noop(); err != nil {
		return fmt.Errorf("smtp noop: %w", err)
	}
	return client.Quit()
}

// Send delivers one message and returns a synthesized message ID.
func (g *SMTPGateway) Send(ctx context.Context, msg Message) (string, error) {
	client, err := g.dial(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if err := client.Mail(msg.FromEmail); err != nil {
		return "", fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return "", fmt.Errorf("smtp rcpt to: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("smtp data: %w", err)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), g.cfg.Host)
	headers := fmt.Sprintf(
		"From: %q <%s>\r\nTo: %s\r\nSubject: %s\r\nMessage-ID: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		msg.FromName, msg.FromEmail, msg.To, msg.Subject, messageID,
	)
	if _, err := wc.Write([]byte(headers + msg.HTML)); err != nil {
		wc.Close()
		return "", fmt.Errorf("smtp write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("smtp close data: %w", err)
	}

	if err := client.Quit(); err != nil {
		// Delivery was accepted; a failed QUIT is not a send failure.
		return messageID, nil
	}
	return messageID, nil
}

// Hard-bounce patterns recognized in provider responses. A match is
// classified permanent and skips the remaining retry attempts.
var permanentPatterns = []string{
	"user unknown",
	"no such user",
	"unknown user",
	"mailbox unavailable",
	"mailbox not found",
	"recipient rejected",
	"does not exist",
	"5.1.1",
	"550 ",
	"551 ",
	"553 ",
}

// IsPermanentRejection reports whether a provider error matches a known
// hard-bounce pattern. Anything unrecognized is treated as transient.
func IsPermanentRejection(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range permanentPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// Classify wraps a provider error into the delivery taxonomy: a matched
// hard-bounce pattern becomes a PermanentDeliveryError, everything else a
// TransientDeliveryError bound for the retry path.
func Classify(email string, err error) error {
	if err == nil {
		return nil
	}
	if IsPermanentRejection(err) {
		return appErrors.NewPermanentDelivery(email, err)
	}
	return appErrors.NewTransientDelivery(email, err)
}
