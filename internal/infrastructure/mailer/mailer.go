package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"text/template"

	"github.com/rs/zerolog/log"

	"github.com/iho/debtledger/internal/usecase"
)

// Subject of the activation e-mail.
const Subject = "debtor manager registration"

var activationBody = template.Must(template.New("activation").Parse(
	`Hi {{.Username}},
Please click on the link to confirm your registration:
{{.Link}}
`))

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers activation links over SMTP.
type SMTPMailer struct {
	cfg  Config
	send sendFunc
}

// NewSMTPMailer creates a mailer for cfg.
func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// SendActivation sends the activation link to msg.Email.
func (m *SMTPMailer) SendActivation(ctx context.Context, msg usecase.ActivationMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := Compose(m.cfg.From, msg)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, auth, m.cfg.From, []string{msg.Email}, body); err != nil {
		return fmt.Errorf("smtp send to %s: %w", addr, err)
	}

	log.Ctx(ctx).Info().Str("username", msg.Username).Msg("activation mail sent")
	return nil
}

// Compose renders the full RFC 5322 message.
func Compose(from string, msg usecase.ActivationMessage) ([]byte, error) {
	if strings.ContainsAny(msg.Email, "\r\n") || strings.ContainsAny(from, "\r\n") {
		return nil, errors.New("mail address contains a line break")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.Email)
	fmt.Fprintf(&buf, "Subject: %s\r\n", Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")

	if err := activationBody.Execute(&buf, msg); err != nil {
		return nil, fmt.Errorf("render activation mail: %w", err)
	}
	return buf.Bytes(), nil
}

// LogMailer writes activation links to the log. Used when no SMTP host is configured.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (LogMailer) SendActivation(ctx context.Context, msg usecase.ActivationMessage) error {
	log.Ctx(ctx).Info().
		Str("username", msg.Username).
		Str("email", msg.Email).
		Str("link", msg.Link).
		Msg("activation mail not sent, SMTP disabled")
	return nil
}
