package mailer

import "github.com/roamio/tours-api/pkg/logger"

// DevMailer logs instead of sending; the reset URL shows up in the server
// output during development.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendPasswordReset(toEmail, toName, resetURL string) error {
	logger.Info("[DEV MAIL] Password Reset Email",
		"to", toEmail,
		"name", toName,
		"reset_url", resetURL,
	)
	return nil
}
