package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	mail "github.com/go-mail/mail/v2"
)

// MailAttachment is an in-memory file attached to an outgoing message.
type MailAttachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

// MailMessage is a single outgoing email. HTML is sent as an alternative part
// when present.
type MailMessage struct {
	To          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []MailAttachment
}

// ErrMailNotConfigured is returned by Send when SMTP settings are absent.
var ErrMailNotConfigured = errors.New("smtp not configured (SMTP_HOST/SMTP_USER/SMTP_PASS)")

// SMTPMailer delivers MailMessage values over SMTP.
type SMTPMailer struct {
	host          string
	port          int
	user          string
	pass          string
	from          string
	skipTLSVerify bool
}

func NewSMTPMailer(cfg AppConfig) *SMTPMailer {
	return &SMTPMailer{
		host:          cfg.SMTPHost,
		port:          cfg.SMTPPort,
		user:          cfg.SMTPUser,
		pass:          cfg.SMTPPass,
		from:          cfg.SMTPFrom,
		skipTLSVerify: cfg.SMTPSkipTLSVerify,
	}
}

func (m *SMTPMailer) Send(msg MailMessage) error {
	if len(msg.To) == 0 {
		return nil
	}
	if m == nil || m.host == "" || m.from == "" || m.user == "" {
		return ErrMailNotConfigured
	}

	message := buildMessage(m.from, msg)

	d := mail.NewDialer(m.host, m.port, m.user, m.pass)
	// Port 465 is implicit TLS; everything else must upgrade with STARTTLS.
	if m.port != 465 {
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}
	d.TLSConfig = &tls.Config{
		ServerName:         m.host,
		InsecureSkipVerify: m.skipTLSVerify, // dev only: SMTP_SKIP_TLS_VERIFY=1
	}

	if err := d.DialAndSend(message); err != nil {
		return fmt.Errorf("send mail %q: %w", msg.Subject, err)
	}
	return nil
}

func buildMessage(from string, msg MailMessage) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	for _, att := range msg.Attachments {
		content := att.Content
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		m.Attach(att.FileName,
			mail.SetHeader(map[string][]string{"Content-Type": {contentType}}),
			mail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		)
	}
	return m
}
