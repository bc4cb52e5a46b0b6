// src/services/email_service.go
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/claimfolio/src/config"
	"github.com/username/claimfolio/src/logger"
)

const emailSendTimeout = 20 * time.Second

// ClaimPackage is one outgoing claim email with its form attached.
type ClaimPackage struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

type EmailService interface {
	SendClaimPackage(ctx context.Context, pkg ClaimPackage) error
}

func NewEmailService(cfg *config.AppConfig) EmailService {
	if cfg == nil {
		logger.Get().Error("Configuration is nil. Email service will default to mock.")
		return &MockEmailService{}
	}

	provider := strings.ToLower(cfg.EmailServiceProvider)
	logger.Get().Info("Initializing email service", "provider", provider)

	switch provider {
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunPrivateAPIKey == "" || cfg.SenderEmail == "" {
			logger.Get().Warn("Mailgun configuration incomplete (Domain, API Key, or SenderEmail missing). Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		mg := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunPrivateAPIKey)
		logger.Get().Info("Mailgun client initialized", "domain", cfg.MailgunDomain)
		return &MailgunEmailService{
			mg:          mg,
			senderEmail: cfg.SenderEmail,
			senderName:  cfg.SenderName,
		}
	case "smtp":
		if cfg.SMTPServer == "" || cfg.SMTPUser == "" || cfg.SMTPPassword == "" || cfg.SenderEmail == "" {
			logger.Get().Warn("SMTP configuration incomplete. Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		return &SMTPEmailService{
			SMTPServer:   cfg.SMTPServer,
			SMTPPort:     cfg.SMTPPort,
			SMTPUser:     cfg.SMTPUser,
			SMTPPassword: cfg.SMTPPassword,
			SenderEmail:  cfg.SenderEmail,
		}
	default:
		logger.Get().Info("Defaulting to MockEmailService.")
		return &MockEmailService{}
	}
}

type SMTPEmailService struct {
	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
}

func (s *SMTPEmailService) SendClaimPackage(ctx context.Context, pkg ClaimPackage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message, err := buildMIMEMessage(s.SenderEmail, pkg)
	if err != nil {
		return err
	}
	auth := smtp.PlainAuth("", s.SMTPUser, s.SMTPPassword, s.SMTPServer)
	addr := fmt.Sprintf("%s:%d", s.SMTPServer, s.SMTPPort)
	if err := smtp.SendMail(addr, auth, s.SenderEmail, []string{pkg.To}, message); err != nil {
		logger.FromContext(ctx).Error("Failed to send claim package via SMTP", "error", err, "to", pkg.To)
		return fmt.Errorf("failed to send claim package via SMTP: %w", err)
	}
	logger.FromContext(ctx).Info("Claim package sent successfully via SMTP", "to", pkg.To)
	return nil
}

// buildMIMEMessage renders a text body plus a base64 PDF attachment.
func buildMIMEMessage(from string, pkg ClaimPackage) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	text, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=\"UTF-8\""}})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(pkg.Body)); err != nil {
		return nil, err
	}

	if len(pkg.Attachment) > 0 {
		att, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"application/pdf"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", pkg.AttachmentName)},
		})
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(pkg.Attachment)
		for len(encoded) > 76 {
			if _, err := att.Write([]byte(encoded[:76] + "\r\n")); err != nil {
				return nil, err
			}
			encoded = encoded[76:]
		}
		if _, err := att.Write([]byte(encoded)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", pkg.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", pkg.Subject)
	msg.WriteString("MIME-version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

type MailgunEmailService struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
}

func (s *MailgunEmailService) SendClaimPackage(ctx context.Context, pkg ClaimPackage) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	message := s.mg.NewMessage(from, pkg.Subject, pkg.Body, pkg.To)
	if len(pkg.Attachment) > 0 {
		message.AddBufferAttachment(pkg.AttachmentName, pkg.Attachment)
	}
	message.AddTag("claim-package")

	ctx, cancel := context.WithTimeout(ctx, emailSendTimeout)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to send claim package via Mailgun", "error", err, "to", pkg.To, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w. Response: %s", err, resp)
	}
	logger.FromContext(ctx).Info("Claim package sent successfully via Mailgun", "to", pkg.To, "id", id, "mailgunResp", resp)
	return nil
}

// MockEmailService logs instead of sending and remembers what it was given.
type MockEmailService struct {
	mu   sync.Mutex
	Sent []ClaimPackage
}

func (m *MockEmailService) SendClaimPackage(ctx context.Context, pkg ClaimPackage) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, pkg)
	m.mu.Unlock()
	logger.FromContext(ctx).Info("MockEmailService: Would send claim package.", "to", pkg.To, "subject", pkg.Subject,
		"attachment", pkg.AttachmentName, "bytes", len(pkg.Attachment))
	return nil
}
