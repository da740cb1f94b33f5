package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessageWithAttachment(t *testing.T) {
	msg := buildMessage("LPPM <lppm@example.ac.id>", MailMessage{
		To:      []string{"ops@example.ac.id"},
		Subject: "Surat Tugas Baru dari Budi",
		Text:    "Form baru dari Budi, email: budi@example.ac.id.",
		HTML:    "<p>Form baru</p>",
		Attachments: []MailAttachment{{
			FileName:    "Budi_1.docx",
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Content:     []byte("docx-bytes"),
		}},
	})

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Surat Tugas Baru dari Budi")
	assert.Contains(t, raw, "To: ops@example.ac.id")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, `filename="Budi_1.docx"`)
	assert.Contains(t, raw, "wordprocessingml.document")
	assert.True(t, strings.Contains(raw, "multipart/mixed"))
}

func TestSendWithoutConfiguration(t *testing.T) {
	m := NewSMTPMailer(AppConfig{SMTPHost: "smtp.example.com", SMTPPort: 587})
	err := m.Send(MailMessage{To: []string{"a@example.com"}, Subject: "x"})
	assert.ErrorIs(t, err, ErrMailNotConfigured)

	// No recipients is a no-op.
	assert.NoError(t, m.Send(MailMessage{}))
}
