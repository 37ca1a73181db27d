package mailing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestSendMailWithAttachment(t *testing.T) {
	var sent []*gomail.Message
	m := &smtpMailer{config: MailConfig{SMTPEmail: "shop@durian.app", SMTPSender: "Durian App"}}
	m.send = func(msgs ...*gomail.Message) error {
		sent = append(sent, msgs...)
		return nil
	}

	err := m.SendMail("buyer@example.com", "Your receipt", "Transaction ID: tx-1", Attachment{
		Filename:    "receipt.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.3 fake"),
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)

	assert.Equal(t, []string{"buyer@example.com"}, sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Your receipt"}, sent[0].GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = sent[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, `filename="receipt.pdf"`)
	assert.Contains(t, raw, "application/pdf")
	assert.Contains(t, raw, "Transaction ID: tx-1")
}

func TestDialAndSendRejectsBadPort(t *testing.T) {
	m := NewMailer(MailConfig{SMTPHost: "localhost", SMTPPort: "not-a-port"})
	assert.Error(t, m.SendMail("a@b.c", "s", "b"))
}
