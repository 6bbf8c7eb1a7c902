package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	config "github.com/avatarctic/auth-workflow/configs"
	"github.com/avatarctic/auth-workflow/internal/core/ports"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// mailClient is the subset of *sendgrid.Client the service needs.
type mailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailService implements the EmailService interface
type EmailService struct {
	config    *config.EmailConfig
	jwt       *config.JWTConfig
	logger    *logrus.Logger
	client    mailClient
	templates *template.Template
}

// NewEmailService creates a SendGrid-backed email service
func NewEmailService(cfg *config.EmailConfig, jwtCfg *config.JWTConfig, logger *logrus.Logger) (ports.EmailService, error) {
	return newEmailService(cfg, jwtCfg, logger, sendgrid.NewSendClient(cfg.SendGridAPIKey))
}

func newEmailService(cfg *config.EmailConfig, jwtCfg *config.JWTConfig, logger *logrus.Logger, client mailClient) (*EmailService, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	return &EmailService{
		config:    cfg,
		jwt:       jwtCfg,
		logger:    logger,
		client:    client,
		templates: templates,
	}, nil
}

// ResetPasswordEmailData holds data for the reset password template
type ResetPasswordEmailData struct {
	CompanyName string
	ResetURL    string
	ExpiresIn   string
}

// VerificationEmailData holds data for email verification template
type VerificationEmailData struct {
	CompanyName     string
	UserName        string
	VerificationURL string
	ExpiresIn       string
}

func (e *EmailService) SendResetPasswordEmail(ctx context.Context, email, token string) error {
	data := ResetPasswordEmailData{
		CompanyName: e.config.CompanyName,
		ResetURL:    e.link("/reset-password", token),
		ExpiresIn:   humanDuration(e.jwt.ResetPasswordTTL),
	}

	htmlContent, err := e.renderTemplate("reset_password.html", data)
	if err != nil {
		return fmt.Errorf("failed to render reset password email template: %w", err)
	}

	return e.sendEmail(ctx, email, "Reset password", htmlContent)
}

// SendVerificationEmail sends an email verification email
func (e *EmailService) SendVerificationEmail(ctx context.Context, email, token, userName string) error {
	data := VerificationEmailData{
		CompanyName:     e.config.CompanyName,
		UserName:        userName,
		VerificationURL: e.link("/verify-email", token),
		ExpiresIn:       humanDuration(e.jwt.VerifyEmailTTL),
	}

	htmlContent, err := e.renderTemplate("verify_email.html", data)
	if err != nil {
		return fmt.Errorf("failed to render verification email template: %w", err)
	}

	return e.sendEmail(ctx, email, "Email Verification", htmlContent)
}

func (e *EmailService) link(path, token string) string {
	return strings.TrimRight(e.config.BaseURL, "/") + path + "?token=" + url.QueryEscape(token)
}

// sendEmail sends an email using SendGrid
func (e *EmailService) sendEmail(ctx context.Context, to, subject, htmlContent string) error {
	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	recipient := mail.NewEmail("", to)

	message := mail.NewSingleEmail(from, subject, recipient, "", htmlContent)

	response, err := e.client.SendWithContext(ctx, message)
	if err == nil && response != nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid responded with status %d: %s", response.StatusCode, response.Body)
	}
	if err != nil {
		if e.logger != nil {
			e.logger.WithFields(logrus.Fields{
				"to":      to,
				"subject": subject,
			}).WithError(err).Error("failed to send email")
		}
		return fmt.Errorf("failed to send email: %w", err)
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"to":          to,
			"subject":     subject,
			"status_code": response.StatusCode,
		}).Info("email sent")
	}

	return nil
}

func (e *EmailService) renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short time"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
