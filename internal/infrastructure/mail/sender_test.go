package mail_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/jhoicas/Suministros-api/internal/application/notification"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/mail"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := mail.NewLogSender(zerolog.New(&buf))
	require.NoError(t, s.Send(context.Background(), notification.Message{To: "a@example.com", Subject: "Stock bajo: X", Body: "b"}))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "a@example.com", entry["to"])
	assert.Equal(t, "Stock bajo: X", entry["subject"])
	assert.Equal(t, "mail", entry["component"])
}

func TestSMTPSender_ContextoCancelado(t *testing.T) {
	s := mail.NewSMTPSender(mail.SMTPConfig{Host: "127.0.0.1", Port: 1, From: "no-reply@example.com"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, notification.Message{To: "a@example.com"}), context.Canceled)
}
