package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCloudConvert serves the job API. The job reports "processing" for the
// first pendingPolls status checks, then finalStatus.
type fakeCloudConvert struct {
	srv          *httptest.Server
	pendingPolls int32
	finalStatus  string
	polls        int32
	uploaded     []byte
	uploadParams map[string]string
}

func newFakeCloudConvert(t *testing.T, pendingPolls int32, finalStatus string) *fakeCloudConvert {
	f := &fakeCloudConvert{pendingPolls: pendingPolls, finalStatus: finalStatus}
	mux := http.NewServeMux()

	mux.HandleFunc("/v2/jobs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer cc-key", r.Header.Get("Authorization"))
		var payload map[string]map[string]map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "pdf", payload["tasks"]["convert"]["output_format"])

		writeJob(w, "job-1", "waiting", fmt.Sprintf(`[{"id":"t1","name":"upload","operation":"import/upload","status":"waiting",
			"result":{"form":{"url":"%s/upload","parameters":{"signature":"abc"}}}}]`, f.srv.URL))
	})

	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse upload form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.uploadParams = map[string]string{"signature": r.FormValue("signature")}
		file, _, err := r.FormFile("file")
		if assert.NoError(t, err) {
			f.uploaded, _ = io.ReadAll(file)
		}
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("/v2/jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&f.polls, 1)
		if n <= f.pendingPolls {
			writeJob(w, "job-1", "processing", `[]`)
			return
		}
		switch f.finalStatus {
		case "finished":
			writeJob(w, "job-1", "finished", fmt.Sprintf(`[{"id":"t3","name":"export","operation":"export/url","status":"finished",
				"result":{"files":[{"filename":"out.pdf","url":"%s/files/out.pdf"}]}}]`, f.srv.URL))
		case "error":
			writeJob(w, "job-1", "error", `[{"id":"t2","name":"convert","operation":"convert","status":"error","message":"corrupt docx"}]`)
		default:
			writeJob(w, "job-1", "processing", `[]`)
		}
	})

	mux.HandleFunc("/files/out.pdf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func writeJob(w http.ResponseWriter, id, status, tasks string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"data":{"id":%q,"status":%q,"tasks":%s}}`, id, status, tasks)
}

func newTestConverter(f *fakeCloudConvert, timeout time.Duration) *CloudConvertService {
	svc := NewCloudConvertService("cc-key", f.srv.URL+"/v2/", timeout, f.srv.Client())
	svc.pollInterval = 5 * time.Millisecond
	return svc
}

func TestCloudConvertConvertsDocx(t *testing.T) {
	f := newFakeCloudConvert(t, 2, "finished")

	pdf, err := newTestConverter(f, 5*time.Second).ConvertToPDF(context.Background(), "Budi_1.docx", []byte("docx-bytes"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 fake"), pdf)
	assert.Equal(t, []byte("docx-bytes"), f.uploaded)
	assert.Equal(t, "abc", f.uploadParams["signature"])
	assert.EqualValues(t, 3, atomic.LoadInt32(&f.polls))
}

func TestCloudConvertJobError(t *testing.T) {
	f := newFakeCloudConvert(t, 0, "error")

	_, err := newTestConverter(f, 5*time.Second).ConvertToPDF(context.Background(), "Budi_1.docx", []byte("x"))
	require.ErrorIs(t, err, ErrConversionFailed)
	assert.Contains(t, err.Error(), "corrupt docx")
}

func TestCloudConvertWaitIsBounded(t *testing.T) {
	f := newFakeCloudConvert(t, 0, "stuck")

	start := time.Now()
	_, err := newTestConverter(f, 100*time.Millisecond).ConvertToPDF(context.Background(), "Budi_1.docx", []byte("x"))
	require.ErrorIs(t, err, ErrConversionFailed)
	assert.Less(t, time.Since(start), 3*time.Second)
}
