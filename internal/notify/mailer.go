package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

// MailerOptions configures the SMTP notifier.
type MailerOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends templated HTML mail over SMTP with PLAIN auth.
type Mailer struct {
	opts      MailerOptions
	templates *template.Template
	logger    zerolog.Logger
}

// NewMailer parses the embedded templates and returns a ready Mailer.
func NewMailer(opts MailerOptions, logger zerolog.Logger) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Mailer{opts: opts, templates: tmpl, logger: logger}, nil
}

// Send renders the named template and delivers it to a single recipient.
func (m *Mailer) Send(ctx context.Context, to, subject, templateName string, data map[string]any) error {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, templateName+".html", data); err != nil {
		return fmt.Errorf("render template %s: %w", templateName, err)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.opts.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", m.opts.Host, m.opts.Port)
	auth := sasl.NewPlainClient("", m.opts.Username, m.opts.Password)
	if err := smtp.SendMail(addr, auth, m.opts.From, []string{to}, strings.NewReader(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	m.logger.Debug().Str("to", to).Str("template", templateName).Msg("mail sent")
	return nil
}

var _ Notifier = (*Mailer)(nil)
