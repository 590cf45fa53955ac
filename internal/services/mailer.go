package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"debo-engineering/job-portal/internal/logger"
)

type EmailMessage struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer delivers a rendered message over one transport.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type MailerConfig struct {
	Provider     string
	FromName     string
	FromAddress  string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SESRegion    string
	SMTPTimeout  time.Duration
}

const defaultSMTPTimeout = 10 * time.Second

func (c MailerConfig) from() string {
	if c.FromName == "" {
		return c.FromAddress
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", c.FromName), c.FromAddress)
}

func NewMailer(ctx context.Context, cfg MailerConfig, log logger.Logger) (Mailer, error) {
	switch cfg.Provider {
	case "smtp":
		return &smtpMailer{cfg: cfg}, nil
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SESRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		return NewSESMailer(ses.NewFromConfig(awsCfg), cfg), nil
	case "log", "":
		return &logMailer{log: log}, nil
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Provider)
	}
}

// logMailer writes messages to the log instead of sending them.
type logMailer struct {
	log logger.Logger
}

func (m *logMailer) Send(_ context.Context, msg EmailMessage) error {
	m.log.Info("email not sent (log provider)", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}

type smtpMailer struct {
	cfg MailerConfig
}

func (m *smtpMailer) Send(ctx context.Context, msg EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before sending email: %w", err)
	}

	timeout := m.cfg.SMTPTimeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	addr := net.JoinHostPort(m.cfg.SMTPHost, fmt.Sprintf("%d", m.cfg.SMTPPort))
	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	// The whole conversation shares one deadline.
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set SMTP deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to greet SMTP server: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.SMTPHost}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if m.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(m.cfg.FromAddress); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", msg.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write([]byte(buildMIMEMessage(m.cfg.from(), msg))); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

func buildMIMEMessage(from string, msg EmailMessage) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("From: %s\r\n", from))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject)))
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(msg.HTMLBody)

	return builder.String()
}

// SESAPI is the subset of the SES client used for sending.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type sesMailer struct {
	client SESAPI
	cfg    MailerConfig
}

func NewSESMailer(client SESAPI, cfg MailerConfig) Mailer {
	return &sesMailer{client: client, cfg: cfg}
}

func (m *sesMailer) Send(ctx context.Context, msg EmailMessage) error {
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.cfg.from()),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	return nil
}
