package mailer

import "github.com/roamio/tours-api/pkg/config"

// Service sends transactional mail. Send failures are meaningful to callers:
// the password-reset flow compensates by rolling back the stored token.
type Service interface {
	SendPasswordReset(toEmail, toName, resetURL string) error
}

// FromConfig picks an implementation: dev logger, MailerSend when an API key
// is present, SMTP otherwise.
func FromConfig(cfg config.EmailConfig) Service {
	if cfg.DevMode {
		return NewDevMailer()
	}
	if cfg.MailerSendKey != "" {
		return NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	}
	return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
}

func resetText(resetURL string) string {
	return "Forgot your password? Submit a PATCH request with your new password and confirmPassword to: " +
		resetURL + "\nIf you didn't forget your password, please ignore this email!"
}

func resetHTML(toName, resetURL string) string {
	return `<p>Hi ` + toName + `,</p>
<p>Forgot your password? Click the link below to choose a new one. The link is valid for 10 minutes.</p>
<p><a href="` + resetURL + `">Reset password</a></p>
<p>If you didn't forget your password, please ignore this email!</p>`
}
