package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"lppm-form-api/config"
	"lppm-form-api/models"
	"lppm-form-api/monitor"
	"lppm-form-api/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	pdfContentType  = "application/pdf"
)

// Attachment is a file uploaded together with a form.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// SubmitInput is one incoming form.
type SubmitInput struct {
	FormType  string
	Fields    models.FormFields
	Members   string // JSON array of {name, nidn, idsintaAnggota}
	Reference *Attachment
}

// SubmitResult describes a stored submission and its artifacts.
type SubmitResult struct {
	ID       uint                  `json:"id"`
	FormType string                `json:"formType"`
	Table    string                `json:"table"`
	FileURL  string                `json:"fileUrl"`
	PDFURL   string                `json:"pdfUrl,omitempty"`
	Members  []models.AnggotaSurat `json:"anggota"`
}

// SubmissionOptions names the storage buckets used by the pipeline.
type SubmissionOptions struct {
	DocumentBucket string
	UploadBucket   string
}

// SubmissionService runs the intake pipeline for a single form.
type SubmissionService struct {
	db        *gorm.DB
	registry  FormRegistry
	renderer  Renderer
	storage   ObjectStorage
	converter DocumentConverter
	notifier  SubmissionNotifier
	opts      SubmissionOptions
	newID     func() string

	pending sync.WaitGroup
}

// NewSubmissionService wires the pipeline. converter and notifier may be nil
// to disable PDF conversion and email respectively.
func NewSubmissionService(db *gorm.DB, registry FormRegistry, renderer Renderer, storage ObjectStorage,
	converter DocumentConverter, notifier SubmissionNotifier, opts SubmissionOptions) *SubmissionService {
	if db == nil {
		db = config.DB
	}
	if opts.DocumentBucket == "" {
		opts.DocumentBucket = "surat-tugas-files"
	}
	if opts.UploadBucket == "" {
		opts.UploadBucket = "uploads"
	}
	return &SubmissionService{
		db:        db,
		registry:  registry,
		renderer:  renderer,
		storage:   storage,
		converter: converter,
		notifier:  notifier,
		opts:      opts,
		newID:     uuid.NewString,
	}
}

// Submit validates, renders, stores and uploads one form, then schedules PDF
// conversion and the notification emails in the background. A *PipelineError
// with Persisted set means the row exists even though a later stage failed.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (result *SubmitResult, err error) {
	cfg, ok := s.registry.Lookup(in.FormType)
	defer func() {
		label := cfg.Key
		if !ok {
			label = "unknown"
		}
		monitor.ObserveSubmission(label, submissionOutcome(err))
	}()
	if !ok {
		return nil, ErrInvalidFormType
	}

	fields := sanitizeFields(in.Fields)
	if missing := fields.Missing(cfg.RequiredFields); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	members := ParseMembers(in.Members)
	doc, err := s.renderer.Render(cfg.Template, cfg.Mapper(fields, members))
	if err != nil {
		return nil, &PipelineError{Stage: StageRender, Err: err}
	}

	record := cfg.NewRecord(fields)
	stored, err := s.persist(ctx, cfg.Table, record, members)
	if err != nil {
		return nil, &PipelineError{Stage: StagePersist, Err: err}
	}

	id := record.RecordID()
	result = &SubmitResult{ID: id, FormType: cfg.Key, Table: cfg.Table, Members: stored}
	stem := utils.SafeFileStem(fields.First("nama_ketua", "nama"), "Unknown")
	docName := fmt.Sprintf("%s_%s.docx", stem, s.newID())

	if err := s.uploadArtifacts(ctx, result, stem, docName, doc, in.Reference); err != nil {
		return result, &PipelineError{Stage: StageUpload, Persisted: true, RecordID: id, Err: err}
	}

	var pdfURL interface{}
	if result.PDFURL != "" {
		pdfURL = result.PDFURL
	}
	if err := s.db.WithContext(ctx).Table(cfg.Table).Where("id = ?", id).
		Updates(map[string]interface{}{"file_url": result.FileURL, "pdf_url": pdfURL}).Error; err != nil {
		return result, &PipelineError{Stage: StagePersist, Persisted: true, RecordID: id, Err: fmt.Errorf("store artifact urls: %w", err)}
	}

	s.dispatch(ctx, SubmissionNotice{
		FormType:       cfg.Key,
		Subject:        cfg.EmailSubject,
		RecordID:       id,
		SubmitterName:  fields.First("nama_ketua", "nama"),
		SubmitterEmail: fields.Get("email"),
		FileURL:        result.FileURL,
		PDFURL:         result.PDFURL,
		Document:       config.MailAttachment{FileName: docName, ContentType: docxContentType, Content: doc},
	})

	return result, nil
}

// Wait blocks until every scheduled conversion and notification has finished.
func (s *SubmissionService) Wait() {
	s.pending.Wait()
}

// persist inserts the submission and its members in one transaction and
// returns the members as stored.
func (s *SubmissionService) persist(ctx context.Context, table string, record models.Submission, members []Member) ([]models.AnggotaSurat, error) {
	var stored []models.AnggotaSurat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}

		rows := make([]models.AnggotaSurat, 0, len(members))
		for _, m := range members {
			rows = append(rows, models.AnggotaSurat{
				SuratType:      table,
				SuratID:        record.RecordID(),
				Nama:           m.Name,
				NIDN:           m.NIDN,
				IDSintaAnggota: m.IDSinta,
			})
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("insert %s: %w", models.MemberTable, err)
			}
		}

		return tx.Where("surat_type = ? AND surat_id = ?", table, record.RecordID()).
			Order("id").Find(&stored).Error
	})
	return stored, err
}

func (s *SubmissionService) uploadArtifacts(ctx context.Context, result *SubmitResult, stem, docName string, doc []byte, ref *Attachment) error {
	if s.storage == nil {
		return ErrStorageNotConfigured
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := s.storage.Upload(gctx, s.opts.DocumentBucket, docName, docxContentType, doc)
		if err != nil {
			return err
		}
		result.FileURL = url
		return nil
	})

	if ref != nil && len(ref.Data) > 0 {
		g.Go(func() error {
			contentType := ref.ContentType
			if contentType == "" {
				contentType = pdfContentType
			}
			name := fmt.Sprintf("%s_%s_%s", stem, s.newID(), attachmentName(ref.FileName))
			url, err := s.storage.Upload(gctx, s.opts.UploadBucket, name, contentType, ref.Data)
			if err != nil {
				return err
			}
			result.PDFURL = url
			return nil
		})
	}

	return g.Wait()
}

func (s *SubmissionService) dispatch(ctx context.Context, notice SubmissionNotice) {
	if s.notifier == nil && s.converter == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.finish(persistentContext(ctx), notice)
	}()
}

// finish runs after the response is sent: it swaps the DOCX attachment for a
// converted PDF when conversion succeeds, then notifies.
func (s *SubmissionService) finish(ctx context.Context, notice SubmissionNotice) {
	if pdf := s.convert(ctx, notice.Document.FileName, notice.Document.Content); pdf != nil {
		pdfName := strings.TrimSuffix(notice.Document.FileName, ".docx") + ".pdf"
		notice.Document = config.MailAttachment{FileName: pdfName, ContentType: pdfContentType, Content: pdf}
		if url, err := s.storage.Upload(ctx, s.opts.DocumentBucket, pdfName, pdfContentType, pdf); err != nil {
			log.Printf("Warning: converted PDF upload failed (form=%s id=%d): %v", notice.FormType, notice.RecordID, err)
		} else {
			notice.DocumentPDFURL = url
		}
	}

	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifySubmission(ctx, notice); err != nil {
		log.Printf("notification email send failed (form=%s id=%d): %v", notice.FormType, notice.RecordID, err)
	}
}

func (s *SubmissionService) convert(ctx context.Context, name string, doc []byte) []byte {
	if s.converter == nil {
		return nil
	}
	pdf, err := s.converter.ConvertToPDF(ctx, name, doc)
	if err != nil {
		log.Printf("Warning: %v; sending %s as DOCX", err, name)
		return nil
	}
	return pdf
}

func sanitizeFields(in models.FormFields) models.FormFields {
	out := make(models.FormFields, len(in))
	for k, v := range in {
		if k == MemberSection {
			continue
		}
		out[k] = utils.SanitizeInput(v)
	}
	return out
}

func attachmentName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	return utils.SafeFileStem(strings.TrimSuffix(base, filepath.Ext(base)), "lampiran") + ext
}

func submissionOutcome(err error) string {
	var missing *MissingFieldsError
	var pipeline *PipelineError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidFormType), errors.As(err, &missing):
		return "invalid"
	case errors.As(err, &pipeline):
		return pipeline.Stage + "_error"
	default:
		return "error"
	}
}
