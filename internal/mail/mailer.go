package mail

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"
)

// Mailer delivers verification codes. The transport is deliberately
// swappable; everything above it only cares that a code went out.
type Mailer interface {
	SendVerificationCode(to, code string) error
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendVerificationCode(to, code string) error {
	subject := "Your verification code"
	body := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.cfg.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogMailer logs codes instead of sending them. Used in development and
// whenever SMTP is not configured.
type LogMailer struct{}

func NewLogMailer() LogMailer {
	return LogMailer{}
}

func (LogMailer) SendVerificationCode(to, code string) error {
	log.Info().Str("to", to).Str("code", code).Msg("verification code (mail transport disabled)")
	return nil
}
