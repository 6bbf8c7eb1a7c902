package ports

import (
	"context"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendResetPasswordEmail(ctx context.Context, email, token string) error
	SendVerificationEmail(ctx context.Context, email, token, userName string) error
}

// EmailTemplate represents email template data
type EmailTemplate struct {
	Subject string
	Body    string
	IsHTML  bool
}
