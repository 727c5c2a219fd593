package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	Reset()
	defer Reset()

	Configure(Config{Short: 7 * time.Second})

	if got := Short(); got != 7*time.Second {
		t.Errorf("Short() = %v, want 7s", got)
	}
	if got := Medium(); got != DefaultMedium {
		t.Errorf("Medium() = %v, want default %v", got, DefaultMedium)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	Reset()
	defer Reset()

	t.Setenv("TIMEOUT_PING", "500ms")
	t.Setenv("TIMEOUT_LONG", "2m")

	if err := ConfigureFromEnv(); err != nil {
		t.Fatalf("ConfigureFromEnv: %v", err)
	}
	if got := Ping(); got != 500*time.Millisecond {
		t.Errorf("Ping() = %v, want 500ms", got)
	}
	if got := Long(); got != 2*time.Minute {
		t.Errorf("Long() = %v, want 2m", got)
	}
	if got := Short(); got != DefaultShort {
		t.Errorf("Short() = %v, want default", got)
	}
}

func TestConfigureFromEnv_Malformed(t *testing.T) {
	Reset()
	defer Reset()

	t.Setenv("TIMEOUT_SHORT", "soon")

	if err := ConfigureFromEnv(); err == nil {
		t.Fatal("expected error for malformed duration")
	}
	if got := Short(); got != DefaultShort {
		t.Errorf("Short() = %v, want default after failed overlay", got)
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()

	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
