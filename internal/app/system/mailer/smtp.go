package mailer

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"sync"
	"time"
)

const (
	dialTimeout = 10 * time.Second
	sendTimeout = 30 * time.Second
	noopTimeout = 5 * time.Second
)

// smtpTransport reuses one authenticated connection for the process lifetime.
// The mutex serializes sends on that connection.
type smtpTransport struct {
	host     string
	addr     string
	username string
	password string
	mode     string

	dialTimeout time.Duration
	sendTimeout time.Duration
	noopTimeout time.Duration

	mu     sync.Mutex
	conn   net.Conn
	client *smtp.Client
}

// SMTP connection security modes.
const (
	ModeNone     = "none"
	ModeSTARTTLS = "starttls"
	ModeTLS      = "tls"
)

func newSMTPTransport(cfg Config) (*smtpTransport, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeSTARTTLS
	}
	switch mode {
	case ModeNone, ModeSTARTTLS, ModeTLS:
	default:
		return nil, fmt.Errorf("unsupported smtp mode %q", cfg.Mode)
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return &smtpTransport{
		host:     cfg.Host,
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		username: cfg.Username,
		password: cfg.Password,
		mode:     mode,

		dialTimeout: dialTimeout,
		sendTimeout: sendTimeout,
		noopTimeout: noopTimeout,
	}, nil
}

func (t *smtpTransport) name() string { return "smtp" }

func (t *smtpTransport) send(from, to string, msg []byte, _ Email) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A connection idle long enough for the server to drop it fails NOOP.
	// That only decides whether to dial; the message itself is sent once.
	// A server that accepts but never answers must not hold the lock.
	if t.client != nil {
		_ = t.conn.SetDeadline(time.Now().Add(t.noopTimeout))
		if t.client.Noop() != nil {
			t.dropLocked()
		}
	}
	if t.client == nil {
		if err := t.connectLocked(); err != nil {
			return err
		}
	}

	_ = t.conn.SetDeadline(time.Now().Add(t.sendTimeout))
	if err := t.deliverLocked(from, to, msg); err != nil {
		t.dropLocked()
		return err
	}
	_ = t.conn.SetDeadline(time.Time{})
	return nil
}

func (t *smtpTransport) deliverLocked(from, to string, msg []byte) error {
	if err := t.client.Mail(from); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := t.client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := t.client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return nil
}

func (t *smtpTransport) connectLocked() error {
	tlsCfg := &tls.Config{ServerName: t.host, MinVersion: tls.VersionTLS12}
	dialer := &net.Dialer{Timeout: t.dialTimeout}

	var (
		conn net.Conn
		err  error
	)
	if t.mode == ModeTLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", t.addr, tlsCfg)
	} else {
		conn, err = dialer.Dial("tcp", t.addr)
	}
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(t.sendTimeout))

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	if t.mode == ModeSTARTTLS {
		if err := client.StartTLS(tlsCfg); err != nil {
			_ = client.Close()
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if t.username != "" {
		if err := client.Auth(smtp.PlainAuth("", t.username, t.password, t.host)); err != nil {
			_ = client.Close()
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	t.conn = conn
	t.client = client
	return nil
}

func (t *smtpTransport) dropLocked() {
	if t.client != nil {
		_ = t.client.Close()
	}
	t.client = nil
	t.conn = nil
}

func (t *smtpTransport) close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	_ = t.conn.SetDeadline(time.Now().Add(t.noopTimeout))
	err := t.client.Quit()
	t.dropLocked()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
