package mailer

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSandboxSize is how many messages the sandbox keeps.
const DefaultSandboxSize = 100

// Captured is a message held by the Sandbox.
type Captured struct {
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	TextBody string    `json:"textBody"`
	HTMLBody string    `json:"htmlBody"`
	Raw      string    `json:"raw"`
	SentAt   time.Time `json:"sentAt"`
}

// Sandbox accepts every message and keeps the most recent ones in memory for
// inspection. Nothing is delivered.
type Sandbox struct {
	mu   sync.Mutex
	buf  []Captured
	size int
	log  *zap.Logger
}

// NewSandbox returns a Sandbox that keeps up to size messages.
func NewSandbox(size int, logger *zap.Logger) *Sandbox {
	if size <= 0 {
		size = DefaultSandboxSize
	}
	return &Sandbox{size: size, log: logger}
}

func (s *Sandbox) name() string { return "sandbox" }

func (s *Sandbox) send(_ string, to string, msg []byte, e Email) error {
	s.mu.Lock()
	s.buf = append(s.buf, Captured{
		To:       to,
		Subject:  e.Subject,
		TextBody: e.TextBody,
		HTMLBody: e.HTMLBody,
		Raw:      string(msg),
		SentAt:   time.Now().UTC(),
	})
	if len(s.buf) > s.size {
		s.buf = s.buf[len(s.buf)-s.size:]
	}
	s.mu.Unlock()

	s.log.Info("sandbox mail captured",
		zap.String("to", to),
		zap.String("subject", e.Subject))
	return nil
}

func (s *Sandbox) close() error { return nil }

// Messages returns captured messages, newest last.
func (s *Sandbox) Messages() []Captured {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Captured, len(s.buf))
	copy(out, s.buf)
	return out
}

// Last returns the newest message sent to addr.
func (s *Sandbox) Last(addr string) (Captured, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.buf) - 1; i >= 0; i-- {
		if s.buf[i].To == addr {
			return s.buf[i], true
		}
	}
	return Captured{}, false
}

// Reset discards captured messages.
func (s *Sandbox) Reset() {
	s.mu.Lock()
	s.buf = nil
	s.mu.Unlock()
}
