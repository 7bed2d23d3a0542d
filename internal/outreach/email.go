package outreach

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// EmailSender delivers campaign messages over SMTP via go-mail.
type EmailSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
	subject   string
}

// NewEmailSender creates an email sender. Returns nil when no SMTP host is
// configured; the resolver reports the channel as unavailable in that case.
func NewEmailSender(host string, port int, username, password, fromEmail, fromName, subject string) *EmailSender {
	if host == "" || fromEmail == "" {
		return nil
	}

	return &EmailSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
		subject:   subject,
	}
}

// Send delivers one campaign email.
func (s *EmailSender) Send(ctx context.Context, recipient, body string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(s.subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
