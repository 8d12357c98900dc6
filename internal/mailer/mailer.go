package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"eventdesk/internal/model"
)

// Config comes from the mail section of config.yaml. An empty host
// disables forwarding entirely.
type Config struct {
	Host     string
	Port     string
	From     string
	Password string
	To       string
}

func (c Config) Enabled() bool {
	return c.Host != "" && c.From != "" && c.To != ""
}

// Mailer forwards inbox notifications by email. It implements
// feed.Forwarder.
type Mailer struct {
	cfg Config
	log *zerolog.Logger
}

func New(cfg Config, log *zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

func (m *Mailer) Forward(n model.Notification) error {
	subject := n.Titulo
	body := n.Mensagem
	if n.EventoNome != "" {
		body = fmt.Sprintf("%s\n\nEvento: %s", body, n.EventoNome)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, m.cfg.To, subject, body,
	)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{m.cfg.To}, []byte(msg)); err != nil {
		m.log.Warn().Err(err).Str("to", m.cfg.To).Msg("failed to send notification email")
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Str("to", m.cfg.To).Str("tipo", n.Tipo).Msg("notification email sent")
	return nil
}
