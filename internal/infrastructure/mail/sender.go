// Package mail adaptadores de envío para el notificador: SMTP y solo log.
package mail

import (
	"context"
	"fmt"

	"github.com/jhoicas/Suministros-api/internal/application/notification"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

var (
	_ notification.Sender = (*SMTPSender)(nil)
	_ notification.Sender = (*LogSender)(nil)
)

// SMTPConfig servidor de salida.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPSender envía texto plano por SMTP con gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender construye el emisor; no abre conexión hasta el primer envío.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPSender{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), from: from}
}

func (s *SMTPSender) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp %s: %w", s.dialer.Host, err)
	}
	return nil
}

// LogSender escribe el mensaje en el log; se usa cuando no hay SMTP configurado.
type LogSender struct {
	log zerolog.Logger
}

// NewLogSender construye el emisor de solo log.
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "mail").Logger()}
}

func (s *LogSender) Send(_ context.Context, msg notification.Message) error {
	s.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Str("body", msg.Body).Msg("notificación (sin SMTP)")
	return nil
}
