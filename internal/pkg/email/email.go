package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"
)

// EmailService sends institute onboarding mail.
type EmailService interface {
	SendInstituteApproval(toEmail, toName, instituteCode, tempPassword string) error
	SendInstituteRejection(toEmail, toName, reason string) error
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
	PortalURL string // Login page linked from onboarding mail
}

// EmailServiceImpl implements EmailService
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

func (s *EmailServiceImpl) configured() bool {
	return s.config.Username != "" && s.config.Password != ""
}

// SendInstituteApproval mails the login code and temporary password of a
// newly approved institute.
func (s *EmailServiceImpl) SendInstituteApproval(toEmail, toName, instituteCode, tempPassword string) error {
	// Without SMTP credentials the mail is only logged (development)
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("instituteCode", instituteCode).
			Str("loginURL", s.config.PortalURL).
			Msg("SMTP credentials not configured - approval email not sent.")
		return nil
	}
	subject := "Your institute has been approved - Student Smart Hub"

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Welcome to Student Smart Hub!</h2>
				<p>Hello %s,</p>
				<p>Your institute registration has been approved. Use the credentials below for your first login and change the password right away.</p>

				<p>Institute code: <strong>%s</strong><br>
				Temporary password: <strong>%s</strong></p>

				<div style="text-align: center; margin: 30px 0;">
					<a href="%s" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Sign in</a>
				</div>

				<p>Best regards,<br>The Student Smart Hub Team</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(toName), instituteCode, html.EscapeString(tempPassword), s.config.PortalURL)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendInstituteRejection tells the applicant why the request was declined.
func (s *EmailServiceImpl) SendInstituteRejection(toEmail, toName, reason string) error {
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("reason", reason).
			Msg("SMTP credentials not configured - rejection email not sent.")
		return nil
	}
	subject := "Update on your institute registration - Student Smart Hub"

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Hello %s,</p>
				<p>We could not approve your institute registration at this time.</p>
				<p>Reviewer comment: %s</p>
				<p>You are welcome to submit a new request with updated details.</p>
				<p>Best regards,<br>The Student Smart Hub Team</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(toName), html.EscapeString(reason))

	return s.sendHTMLEmail(toEmail, subject, body)
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)},
		{"To", toEmail},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	message := ""
	for _, h := range headers {
		message += fmt.Sprintf("%s: %s\r\n", h[0], h[1])
	}
	message += "\r\n" + htmlBody

	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, []byte(message))
		if err != nil {
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
		s.logger.Error().Err(err).Msg("Failed to create SMTP client")
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
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
