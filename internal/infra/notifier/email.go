package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"

	"market-pulse/internal/domain/entity"
)

// EmailConfig configures SMTP delivery of the digest.
type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// ErrEmailNotConfigured is returned when host, sender or recipients are missing.
var ErrEmailNotConfigured = errors.New("email: SMTP host, sender and recipients are required")

type sendMailFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier sends the digest as a multipart/alternative message with a
// markdown text part and an HTML part.
type EmailNotifier struct {
	config   EmailConfig
	sendMail sendMailFunc
	now      func() time.Time
}

// NewEmailNotifier creates the notifier. From defaults to Username.
func NewEmailNotifier(config EmailConfig) *EmailNotifier {
	if config.From == "" {
		config.From = config.Username
	}
	if config.Port == 0 {
		config.Port = 587
	}
	return &EmailNotifier{config: config, sendMail: sendMailContext, now: time.Now}
}

func (e *EmailNotifier) NotifyDigest(ctx context.Context, d *entity.DailyDigest) error {
	if e.config.Host == "" || e.config.From == "" || len(e.config.To) == 0 {
		return ErrEmailNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := e.buildMessage(d)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if e.config.Username != "" {
		auth = smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)
	}
	addr := net.JoinHostPort(e.config.Host, strconv.Itoa(e.config.Port))
	if err := e.sendMail(ctx, addr, auth, e.config.From, e.config.To, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// sendMailContext is smtp.SendMail with the dial and the whole SMTP exchange
// bound to ctx.
func sendMailContext(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	err := sendMail(ctx, addr, a, from, to, msg)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}

func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("server does not support AUTH")
		}
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (e *EmailNotifier) buildMessage(d *entity.DailyDigest) ([]byte, error) {
	htmlBody, err := RenderDigestHTML(d)
	if err != nil {
		return nil, err
	}

	var h mail.Header
	h.SetDate(e.now())
	h.SetSubject(DigestSubject(d))
	h.SetAddressList("From", []*mail.Address{{Name: "Market Pulse", Address: e.config.From}})
	to := make([]*mail.Address, 0, len(e.config.To))
	for _, addr := range e.config.To {
		to = append(to, &mail.Address{Address: addr})
	}
	h.SetAddressList("To", to)

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create mail writer: %w", err)
	}
	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("create inline part: %w", err)
	}
	if err := writePart(tw, "text/plain", RenderDigestMarkdown(d)); err != nil {
		return nil, err
	}
	if err := writePart(tw, "text/html", htmlBody); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePart(tw *mail.InlineWriter, contentType, body string) error {
	var ph mail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	w, err := tw.CreatePart(ph)
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return err
	}
	return w.Close()
}
