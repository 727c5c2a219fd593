// Package mailer sends transactional email.
//
// A Mailer is built once at startup and injected into handlers. With an SMTP
// host configured it keeps a single connection open across sends; without
// one it captures messages in an in-memory Sandbox so local development never
// reaches real recipients.
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/dalemusser/hopenest/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hopenest/internal/app/system/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrMissingRecipient is returned when Email.To is blank.
	ErrMissingRecipient = errors.New("missing recipient")
	// ErrInvalidRecipient is returned when Email.To is not a single address.
	ErrInvalidRecipient = errors.New("invalid recipient")
)

// Email is one outbound message. TextBody is derived from HTMLBody when empty.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config selects and configures the transport.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Mode     string // none | starttls | tls
	From     string
	FromName string

	// Sandbox forces the in-memory transport even when Host is set.
	Sandbox bool
}

type transport interface {
	name() string
	send(from string, to string, msg []byte, e Email) error
	close() error
}

// Mailer is safe for concurrent use.
type Mailer struct {
	from    string
	fromHdr string
	t       transport
	sandbox *Sandbox
	log     *zap.Logger
}

// New builds the Mailer. It does not dial; the first Send does.
func New(cfg Config, logger *zap.Logger) (*Mailer, error) {
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = "no-reply@hopenest.local"
	}
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", from, err)
	}
	fromHdr := (&mail.Address{Name: cfg.FromName, Address: addr.Address}).String()

	m := &Mailer{from: addr.Address, fromHdr: fromHdr, log: logger}

	if cfg.Sandbox || strings.TrimSpace(cfg.Host) == "" {
		m.sandbox = NewSandbox(DefaultSandboxSize, logger)
		m.t = m.sandbox
		logger.Warn("mailer using sandbox transport; messages will not be delivered")
		return m, nil
	}

	st, err := newSMTPTransport(cfg)
	if err != nil {
		return nil, err
	}
	m.t = st
	logger.Info("mailer using smtp transport",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("mode", st.mode))
	return m, nil
}

// Send hands e to the transport and returns once it is accepted.
func (m *Mailer) Send(e Email) error {
	to := strings.TrimSpace(e.To)
	if to == "" {
		return ErrMissingRecipient
	}
	if strings.ContainsAny(to, "\r\n,;") {
		return ErrInvalidRecipient
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return ErrInvalidRecipient
	}
	e.To = to
	e.Subject = strings.Join(strings.Fields(e.Subject), " ")
	if e.TextBody == "" && e.HTMLBody != "" {
		e.TextBody = htmlsanitize.PlainText(e.HTMLBody)
	}

	msg, err := m.build(e)
	if err != nil {
		return err
	}

	err = m.t.send(m.from, to, msg, e)
	metrics.RecordMail(m.t.name(), err)
	return err
}

// Sandbox returns the capturing transport, if that is what is in use.
func (m *Mailer) Sandbox() (*Sandbox, bool) {
	return m.sandbox, m.sandbox != nil
}

// Transport names the active transport ("smtp" or "sandbox").
func (m *Mailer) Transport() string {
	return m.t.name()
}

// Close releases the transport connection.
func (m *Mailer) Close() error {
	return m.t.close()
}

// build renders a multipart/alternative RFC 5322 message.
func (m *Mailer) build(e Email) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := []string{
		"From: " + m.fromHdr,
		"To: " + e.To,
		"Subject: " + mime.QEncoding.Encode("utf-8", e.Subject),
		"Date: " + time.Now().UTC().Format(time.RFC1123Z),
		"Message-ID: <" + uuid.NewString() + "@" + domainOf(m.from) + ">",
		"MIME-Version: 1.0",
		"Content-Type: multipart/alternative; boundary=" + mw.Boundary(),
		"",
		"",
	}
	buf.WriteString(strings.Join(hdr, "\r\n"))

	parts := []struct {
		ctype string
		body  string
	}{
		{"text/plain; charset=utf-8", e.TextBody},
		{"text/html; charset=utf-8", e.HTMLBody},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.ctype},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(p.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func domainOf(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
