package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService sends transactional mail.
type EmailService interface {
	SendNotification(toEmail, toName string, msg Message) error
}

// Message is the content of a notification e-mail.
type Message struct {
	Subject  string
	Headline string
	Body     string
	LinkText string
	LinkPath string
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string
}

// Enabled reports whether enough settings are present to actually send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// EmailServiceImpl implements EmailService over net/smtp.
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

// SendNotification renders msg and sends it. Without SMTP credentials the mail is
// only logged.
func (s *EmailServiceImpl) SendNotification(toEmail, toName string, msg Message) error {
	if toEmail == "" {
		return nil
	}
	if !s.config.Enabled() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", msg.Subject).
			Msg("SMTP not configured - notification email not sent")
		return nil
	}
	return s.sendHTMLEmail(toEmail, msg.Subject, renderHTML(toName, msg, s.config.BaseURL))
}

func renderHTML(toName string, msg Message, baseURL string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	fmt.Fprintf(&b, `<h2 style="color: #333;">%s</h2>`, html.EscapeString(msg.Headline))
	if toName != "" {
		fmt.Fprintf(&b, `<p>Hello %s,</p>`, html.EscapeString(toName))
	}
	fmt.Fprintf(&b, `<p>%s</p>`, html.EscapeString(msg.Body))
	if msg.LinkPath != "" {
		link := strings.TrimRight(baseURL, "/") + msg.LinkPath
		text := msg.LinkText
		if text == "" {
			text = "Open CampusHub"
		}
		fmt.Fprintf(&b, `<p style="margin: 30px 0;"><a href="%s">%s</a></p>`, html.EscapeString(link), html.EscapeString(text))
	}
	b.WriteString(`<p>Best regards,<br>The CampusHub Team</p></div></body></html>`)
	return b.String()
}

func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	headers := []string{
		fmt.Sprintf("From: %s <%s>", s.config.FromName, s.config.FromEmail),
		"To: " + toEmail,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, []byte(message)); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	return w.Close()
}
