package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Message is a rendered email
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers rendered messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// EmailService defines the interface for email operations
type EmailService interface {
	SendOTPEmail(ctx context.Context, toEmail, toName, otp string, ttl time.Duration) error
	SendWelcomeEmail(ctx context.Context, toEmail, toName string) error
	SendPasswordChangedEmail(ctx context.Context, toEmail, toName string) error
	SendAttendanceShortageEmail(ctx context.Context, toEmail, toName, course string, percentage float64) error
}

// EmailServiceImpl renders templates and hands them to a Sender
type EmailServiceImpl struct {
	sender  Sender
	appName string
	baseURL string
	logger  zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(sender Sender, appName, baseURL string, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		sender:  sender,
		appName: appName,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

var layout = template.Must(template.New("layout").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">{{.AppName}}</h2>
		<p>Hello {{.Name}},</p>
		{{range .Paragraphs}}<p>{{.}}</p>
		{{end}}{{if .Code}}<div style="text-align: center; margin: 30px 0; font-size: 28px; letter-spacing: 6px;"><strong>{{.Code}}</strong></div>
		{{end}}<p>Best regards,<br>The {{.AppName}} Team</p>
	</div>
</body>
</html>`))

type layoutData struct {
	AppName    string
	Name       string
	Paragraphs []string
	Code       string
}

// SendOTPEmail sends a password reset code
func (s *EmailServiceImpl) SendOTPEmail(ctx context.Context, toEmail, toName, otp string, ttl time.Duration) error {
	return s.send(ctx, toEmail, toName, "Your password reset code", layoutData{
		Paragraphs: []string{
			"We received a request to reset your password. Use the code below to continue.",
			fmt.Sprintf("The code expires in %d minutes. If you did not request a reset, you can ignore this email.", int(ttl.Minutes())),
		},
		Code: otp,
	})
}

// SendWelcomeEmail greets a newly created account
func (s *EmailServiceImpl) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	return s.send(ctx, toEmail, toName, "Your account is ready", layoutData{
		Paragraphs: []string{
			"An account has been created for you. Sign in with this email address and the password given to you by the administration.",
			fmt.Sprintf("Portal: %s", s.baseURL),
		},
	})
}

// SendPasswordChangedEmail confirms a password change
func (s *EmailServiceImpl) SendPasswordChangedEmail(ctx context.Context, toEmail, toName string) error {
	return s.send(ctx, toEmail, toName, "Your password was changed", layoutData{
		Paragraphs: []string{
			"The password for your account was just changed and all active sessions were signed out.",
			"If this was not you, contact the administration immediately.",
		},
	})
}

// SendAttendanceShortageEmail warns a student below the attendance threshold
func (s *EmailServiceImpl) SendAttendanceShortageEmail(ctx context.Context, toEmail, toName, course string, percentage float64) error {
	return s.send(ctx, toEmail, toName, "Attendance shortage in "+course, layoutData{
		Paragraphs: []string{
			fmt.Sprintf("Your attendance in %s is %.2f%%, which is below the required minimum.", course, percentage),
			"Please contact your instructor.",
		},
	})
}

func (s *EmailServiceImpl) send(ctx context.Context, toEmail, toName, subject string, data layoutData) error {
	data.AppName = s.appName
	data.Name = toName

	var body bytes.Buffer
	if err := layout.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	text := strings.Join(data.Paragraphs, "\n\n")
	if data.Code != "" {
		text += "\n\nCode: " + data.Code
	}

	msg := Message{
		To:      toEmail,
		ToName:  toName,
		Subject: "[" + s.appName + "] " + subject,
		HTML:    body.String(),
		Text:    text,
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("to", toEmail).Str("subject", subject).Msg("Failed to send email")
		return err
	}
	return nil
}
