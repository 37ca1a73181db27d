package mailing

import (
	"Durian-Scanner/internal/utils"
	"io"
	"strconv"

	"gopkg.in/gomail.v2"
)

type (
	MailConfig struct {
		SMTPHost     string
		SMTPPort     string
		SMTPSender   string
		SMTPEmail    string
		SMTPPassword string
	}

	Attachment struct {
		Filename    string
		ContentType string
		Data        []byte
	}

	Mailer interface {
		SendMail(toEmail string, subject string, body string, attachments ...Attachment) error
	}

	smtpMailer struct {
		config MailConfig
		send   func(m ...*gomail.Message) error
	}
)

func LoadMailConfig() MailConfig {
	return MailConfig{
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

func NewMailer(config MailConfig) Mailer {
	m := &smtpMailer{config: config}
	m.send = m.dialAndSend
	return m
}

func (m *smtpMailer) SendMail(toEmail string, subject string, body string, attachments ...Attachment) error {
	return m.send(m.buildMessage(toEmail, subject, body, attachments))
}

func (m *smtpMailer) buildMessage(toEmail, subject, body string, attachments []Attachment) *gomail.Message {
	mailer := gomail.NewMessage()
	if m.config.SMTPSender != "" {
		mailer.SetAddressHeader("From", m.config.SMTPEmail, m.config.SMTPSender)
	} else {
		mailer.SetHeader("From", m.config.SMTPEmail)
	}
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/plain", body)

	for _, a := range attachments {
		data := a.Data
		mailer.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}

	return mailer
}

func (m *smtpMailer) dialAndSend(msgs ...*gomail.Message) error {
	port, err := strconv.Atoi(m.config.SMTPPort)
	if err != nil {
		return err
	}
	dialer := gomail.NewDialer(
		m.config.SMTPHost,
		port,
		m.config.SMTPEmail,
		m.config.SMTPPassword,
	)

	return dialer.DialAndSend(msgs...)
}
