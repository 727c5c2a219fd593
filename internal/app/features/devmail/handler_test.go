package devmail_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/hopenest/internal/app/features/devmail"
	"github.com/dalemusser/hopenest/internal/app/system/mailer"
	"github.com/dalemusser/hopenest/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOutbox(t *testing.T) {
	m, err := mailer.New(mailer.Config{Sandbox: true}, zap.NewNop())
	require.NoError(t, err)
	sb, ok := m.Sandbox()
	require.True(t, ok)

	require.NoError(t, m.Send(mailer.Email{To: "a@example.com", Subject: "first", TextBody: "1"}))
	require.NoError(t, m.Send(mailer.Email{To: "b@example.com", Subject: "second", TextBody: "2"}))
	require.NoError(t, m.Send(mailer.Email{To: "a@example.com", Subject: "third", TextBody: "3"}))

	router := devmail.Routes(devmail.NewHandler(sb))

	var body struct {
		Count    int               `json:"count"`
		Messages []mailer.Captured `json:"messages"`
	}

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/outbox"))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &body)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "third", body.Messages[0].Subject)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/outbox?to=A@example.com"))
	rec.DecodeJSON(t, &body)
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "first", body.Messages[1].Subject)
}
