package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"lppm-form-api/models"
	"lppm-form-api/services"

	"github.com/gin-gonic/gin"
)

// ReferenceFileField is the multipart field carrying the optional reference PDF.
const ReferenceFileField = "pdfFile"

// Submitter runs the intake pipeline.
type Submitter interface {
	Submit(ctx context.Context, in services.SubmitInput) (*services.SubmitResult, error)
}

type SubmissionController struct {
	submitter Submitter
	maxUpload int64
}

// NewSubmissionController builds the controller. maxUploadBytes caps the
// reference file size; zero means 10MB.
func NewSubmissionController(submitter Submitter, maxUploadBytes int64) *SubmissionController {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &SubmissionController{submitter: submitter, maxUpload: maxUploadBytes}
}

// Submit accepts a form as multipart, urlencoded or JSON body.
func (ctl *SubmissionController) Submit(c *gin.Context) {
	in, err := ctl.readInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	in.FormType = c.Param("formType")

	result, err := ctl.submitter.Submit(c.Request.Context(), in)
	if err != nil {
		ctl.fail(c, in.FormType, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Formulir berhasil dikirim",
		"id":      result.ID,
		"fileUrl": result.FileURL,
		"pdfUrl":  nullable(result.PDFURL),
		"anggota": result.Members,
	})
}

func (ctl *SubmissionController) fail(c *gin.Context, formType string, err error) {
	var missing *services.MissingFieldsError
	var pipeline *services.PipelineError

	switch {
	case errors.Is(err, services.ErrInvalidFormType):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Form type tidak valid"})
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Field wajib belum diisi: " + strings.Join(missing.Fields, ", "),
			"missing": missing.Fields,
		})
	case errors.As(err, &pipeline):
		log.Printf("Submit error (form=%s stage=%s persisted=%t id=%d): %v",
			formType, pipeline.Stage, pipeline.Persisted, pipeline.RecordID, pipeline.Err)
		body := gin.H{"success": false, "message": "Gagal submit form", "saved": pipeline.Persisted}
		if pipeline.Persisted {
			body["id"] = pipeline.RecordID
		}
		c.JSON(http.StatusInternalServerError, body)
	default:
		log.Printf("Submit error (form=%s): %v", formType, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Gagal submit form", "saved": false})
	}
}

func (ctl *SubmissionController) readInput(c *gin.Context) (services.SubmitInput, error) {
	var in services.SubmitInput
	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctl.maxUpload+(1<<20))
		if err := c.Request.ParseMultipartForm(ctl.maxUpload); err != nil {
			return in, fmt.Errorf("form tidak valid: %w", err)
		}
		in.Fields = firstValues(c.Request.MultipartForm.Value)
		ref, err := ctl.readReference(c)
		if err != nil {
			return in, err
		}
		in.Reference = ref
	case gin.MIMEJSON:
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			return in, fmt.Errorf("JSON tidak valid: %w", err)
		}
		in.Fields = make(models.FormFields, len(body))
		for k, v := range body {
			if k == services.MemberSection {
				in.Members = membersJSON(v)
				continue
			}
			in.Fields[k] = stringify(v)
		}
		return in, nil
	default:
		if err := c.Request.ParseForm(); err != nil {
			return in, fmt.Errorf("form tidak valid: %w", err)
		}
		in.Fields = firstValues(c.Request.PostForm)
	}

	in.Members = in.Fields[services.MemberSection]
	return in, nil
}

func (ctl *SubmissionController) readReference(c *gin.Context) (*services.Attachment, error) {
	file, header, err := c.Request.FormFile(ReferenceFileField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file tidak valid: %w", err)
	}
	defer file.Close()

	if header.Size > ctl.maxUpload {
		return nil, fmt.Errorf("ukuran file melebihi %dMB", ctl.maxUpload>>20)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("file tidak valid: %w", err)
	}
	return &services.Attachment{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func firstValues(values map[string][]string) models.FormFields {
	fields := make(models.FormFields, len(values))
	for k, v := range values {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}

// membersJSON accepts the member list either as an array or as an encoded string.
func membersJSON(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		raw, _ := json.Marshal(t)
		return string(raw)
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
