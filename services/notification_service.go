package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"lppm-form-api/config"
	"lppm-form-api/utils"
)

const (
	confirmationSubject = "Konfirmasi Pengisian Form LPPM"
	confirmationText    = "Terima kasih sudah mengisi form, untuk surat hasil form dapat menghubungi Admin LPPM - 085117513399 A.n Novi."
)

// MailSender delivers a single email.
type MailSender interface {
	Send(msg config.MailMessage) error
}

// SubmissionNotice is everything the notification step needs about a stored submission.
type SubmissionNotice struct {
	FormType       string
	Subject        string
	RecordID       uint
	SubmitterName  string
	SubmitterEmail string
	FileURL        string
	PDFURL         string
	DocumentPDFURL string
	Document       config.MailAttachment
}

// SubmissionNotifier informs the submitter and the office about a new submission.
type SubmissionNotifier interface {
	NotifySubmission(ctx context.Context, notice SubmissionNotice) error
}

// NotificationService sends a confirmation to the submitter and the rendered
// document to the operations mailbox.
type NotificationService struct {
	mailer     MailSender
	opsMailbox string
}

func NewNotificationService(mailer MailSender, opsMailbox string) *NotificationService {
	return &NotificationService{mailer: mailer, opsMailbox: opsMailbox}
}

func (s *NotificationService) NotifySubmission(ctx context.Context, notice SubmissionNotice) error {
	var errs []error

	if utils.ValidateEmail(notice.SubmitterEmail) {
		err := s.mailer.Send(config.MailMessage{
			To:      []string{notice.SubmitterEmail},
			Subject: confirmationSubject,
			Text:    confirmationText,
			HTML:    buildEmailHTML(confirmationSubject, []string{confirmationText}, nil),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("confirmation to %s: %w", notice.SubmitterEmail, err))
		}
	}

	if err := ctx.Err(); err != nil {
		return errors.Join(append(errs, err)...)
	}

	if s.opsMailbox != "" {
		name := notice.SubmitterName
		if name == "" {
			name = "Unknown"
		}
		subject := fmt.Sprintf("%s Baru dari %s", notice.Subject, name)
		text := fmt.Sprintf("Form baru dari %s, email: %s.", name, notice.SubmitterEmail)
		meta := []emailMetaItem{
			{Label: "Jenis Form", Value: notice.FormType},
			{Label: "ID", Value: strconv.FormatUint(uint64(notice.RecordID), 10)},
			{Label: "Dokumen", Value: notice.FileURL},
			{Label: "Dokumen PDF", Value: notice.DocumentPDFURL},
			{Label: "Lampiran PDF", Value: notice.PDFURL},
		}

		msg := config.MailMessage{
			To:      []string{s.opsMailbox},
			Subject: subject,
			Text:    text,
			HTML:    buildEmailHTML(subject, []string{text}, meta),
		}
		if len(notice.Document.Content) > 0 {
			msg.Attachments = []config.MailAttachment{notice.Document}
		}
		if err := s.mailer.Send(msg); err != nil {
			errs = append(errs, fmt.Errorf("ops notification: %w", err))
		}
	}

	return errors.Join(errs...)
}
