// AngelaMos | 2026
// mailer_test.go

package mail

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/finyara/leadflow/internal/config"
)

func TestNewSenderPicksImplementation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewSender(config.MailConfig{Enabled: false}, logger)
	require.IsType(t, &LogSender{}, s)
	require.NoError(t, s.Send(context.Background(), Message{To: "a@b.c", Subject: "x", Body: "y"}))

	s = NewSender(config.MailConfig{Enabled: true, Host: "smtp.example.com", Port: 587}, logger)
	require.IsType(t, &SMTPSender{}, s)
}

func TestSMTPSenderRejectsBadAddresses(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{
		Host: "127.0.0.1",
		Port: 1,
		From: "not-an-address",
	})

	err := s.Send(context.Background(), Message{To: "user@example.com", Subject: "s", Body: "b"})
	require.ErrorContains(t, err, "set sender")

	s = NewSMTPSender(config.MailConfig{Host: "127.0.0.1", Port: 1, From: "noreply@example.com"})
	err = s.Send(context.Background(), Message{To: "broken", Subject: "s", Body: "b"})
	require.ErrorContains(t, err, "set recipient")
}
