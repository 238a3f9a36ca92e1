package mailing

import (
	"Foodgram-Backend/internal/utils"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SendMail delivers a single HTML message through the configured SMTP relay.
// Only account verification mail goes through here; the shopping list
// download is served inline over HTTP.
func SendMail(toEmail string, subject string, body string) error {
	port, err := strconv.Atoi(utils.GetConfig("SMTP_PORT"))
	if err != nil {
		return err
	}

	sender := utils.GetConfig("SMTP_AUTH_EMAIL")

	mailer := gomail.NewMessage()
	mailer.SetAddressHeader("From", sender, utils.GetConfig("SMTP_SENDER_NAME"))
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)

	dialer := gomail.NewDialer(
		utils.GetConfig("SMTP_HOST"),
		port,
		sender,
		utils.GetConfig("SMTP_AUTH_PASSWORD"),
	)
	return dialer.DialAndSend(mailer)
}
