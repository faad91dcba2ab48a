package service

import (
	"context"
	"fmt"
	"fruit-api/config"
	"fruit-api/logger"
	"net/url"
	"time"

	"gopkg.in/gomail.v2"
)

// Notifier delivers reset links to users.
type Notifier interface {
	SendPasswordReset(ctx context.Context, to, resetLink string, expiresIn time.Duration) error
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailNotifier sends reset links over SMTP. Port 465 uses implicit TLS,
// other ports upgrade with STARTTLS when the server offers it.
type MailNotifier struct {
	dialer  mailDialer
	from    string
	timeout time.Duration
}

func NewMailNotifier(cfg config.EmailConfig) *MailNotifier {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &MailNotifier{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:    from,
		timeout: cfg.SendTimeout,
	}
}

// BuildResetLink returns the frontend page that consumes token.
func BuildResetLink(frontendBase, token string) string {
	return fmt.Sprintf("%s/reset_password.html?token=%s", frontendBase, url.QueryEscape(token))
}

func (n *MailNotifier) SendPasswordReset(ctx context.Context, to, resetLink string, expiresIn time.Duration) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password Reset Request")
	m.SetBody("text/plain", fmt.Sprintf(`Hi,

Click the link below to reset your password:
%s

The link expires in %d minutes and can be used once.

If you did not request this, you can ignore this email.
`, resetLink, int(expiresIn.Minutes())))

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	// gomail has no context support; give up waiting when ctx ends.
	errCh := make(chan error, 1)
	go func() { errCh <- n.dialer.DialAndSend(m) }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to send password reset email: %w", err)
		}
		logger.Log.WithField("to", logger.MaskEmail(to)).Info("Password reset email sent")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("password reset email not confirmed: %w", ctx.Err())
	}
}
