package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// DocumentConverter converts a rendered DOCX into PDF.
type DocumentConverter interface {
	ConvertToPDF(ctx context.Context, fileName string, docx []byte) ([]byte, error)
}

// ErrConversionFailed wraps every failure of the external conversion job.
var ErrConversionFailed = errors.New("pdf conversion failed")

// CloudConvertService runs import/upload -> convert -> export/url jobs on the
// CloudConvert v2 API and waits for them with a bounded poll.
type CloudConvertService struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	timeout      time.Duration
}

// NewCloudConvertService constructs a CloudConvertService. A zero timeout
// defaults to one minute.
func NewCloudConvertService(apiKey, baseURL string, timeout time.Duration, client *http.Client) *CloudConvertService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &CloudConvertService{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       client,
		pollInterval: 2 * time.Second,
		timeout:      timeout,
	}
}

type ccJobEnvelope struct {
	Data ccJob `json:"data"`
}

type ccJob struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Tasks  []ccTask `json:"tasks"`
}

type ccTask struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Operation string `json:"operation"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Result    *struct {
		Form *struct {
			URL        string            `json:"url"`
			Parameters map[string]string `json:"parameters"`
		} `json:"form"`
		Files []struct {
			Filename string `json:"filename"`
			URL      string `json:"url"`
		} `json:"files"`
	} `json:"result"`
}

func (j ccJob) task(match func(ccTask) bool) *ccTask {
	for i := range j.Tasks {
		if match(j.Tasks[i]) {
			return &j.Tasks[i]
		}
	}
	return nil
}

func (s *CloudConvertService) ConvertToPDF(ctx context.Context, fileName string, docx []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	job, err := s.createJob(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create job: %v", ErrConversionFailed, err)
	}

	upload := job.task(func(t ccTask) bool { return t.Name == "upload" })
	if upload == nil || upload.Result == nil || upload.Result.Form == nil {
		return nil, fmt.Errorf("%w: upload task missing from job %s", ErrConversionFailed, job.ID)
	}
	if err := s.uploadFile(ctx, upload.Result.Form.URL, upload.Result.Form.Parameters, fileName, docx); err != nil {
		return nil, fmt.Errorf("%w: upload: %v", ErrConversionFailed, err)
	}

	done, err := s.waitJob(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	export := done.task(func(t ccTask) bool { return t.Operation == "export/url" && t.Status == "finished" })
	if export == nil || export.Result == nil || len(export.Result.Files) == 0 || export.Result.Files[0].URL == "" {
		return nil, fmt.Errorf("%w: export task has no file", ErrConversionFailed)
	}

	pdf, err := s.download(ctx, export.Result.Files[0].URL)
	if err != nil {
		return nil, fmt.Errorf("%w: download: %v", ErrConversionFailed, err)
	}
	return pdf, nil
}

func (s *CloudConvertService) createJob(ctx context.Context) (*ccJob, error) {
	payload := map[string]interface{}{
		"tasks": map[string]interface{}{
			"upload": map[string]string{"operation": "import/upload"},
			"convert": map[string]string{
				"operation":     "convert",
				"input":         "upload",
				"input_format":  "docx",
				"output_format": "pdf",
			},
			"export": map[string]string{"operation": "export/url", "input": "convert"},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.doJob(req)
}

func (s *CloudConvertService) doJob(req *http.Request) (*ccJob, error) {
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("cloudconvert api status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var env ccJobEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode cloudconvert job: %w", err)
	}
	return &env.Data, nil
}

func (s *CloudConvertService) uploadFile(ctx context.Context, formURL string, params map[string]string, fileName string, data []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range params {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, formURL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("upload form status %d", resp.StatusCode)
	}
	return nil
}

// waitJob polls until the job reaches a terminal state or ctx expires.
func (s *CloudConvertService) waitJob(ctx context.Context, id string) (*ccJob, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/jobs/"+id, nil)
		if err != nil {
			return nil, err
		}
		job, err := s.doJob(req)
		if err != nil {
			return nil, err
		}

		switch job.Status {
		case "finished":
			return job, nil
		case "error":
			msg := "job failed"
			if t := job.task(func(t ccTask) bool { return t.Status == "error" }); t != nil && t.Message != "" {
				msg = t.Message
			}
			return nil, fmt.Errorf("job %s: %s", id, msg)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("job %s did not finish: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *CloudConvertService) download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
