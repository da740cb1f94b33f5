package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lppm-form-api/config"
	"lppm-form-api/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []config.MailMessage
	fail map[string]error // keyed by recipient
}

func (m *recordingMailer) Send(msg config.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(msg.To) > 0 {
		if err := m.fail[msg.To[0]]; err != nil {
			return err
		}
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []config.MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]config.MailMessage(nil), m.sent...)
}

type uploadCall struct {
	Bucket      string
	Name        string
	ContentType string
	Size        int
}

type fakeStorage struct {
	mu      sync.Mutex
	calls   []uploadCall
	failFor string // bucket that rejects uploads
}

func (s *fakeStorage) Upload(_ context.Context, bucket, name, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket == s.failFor {
		return "", errors.New("bucket unavailable")
	}
	s.calls = append(s.calls, uploadCall{Bucket: bucket, Name: name, ContentType: contentType, Size: len(data)})
	return "https://storage.test/" + bucket + "/" + name, nil
}

func (s *fakeStorage) uploads() []uploadCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uploadCall(nil), s.calls...)
}

type fakeRenderer struct {
	mu    sync.Mutex
	err   error
	calls    int
	template string
	last     Placeholders
}

func (r *fakeRenderer) Render(templateName string, data Placeholders) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.template = templateName
	r.last = data
	if r.err != nil {
		return nil, r.err
	}
	return []byte("rendered:" + templateName), nil
}

type fakeConverter struct {
	pdf     []byte
	err     error
	release chan struct{}
}

func (c *fakeConverter) ConvertToPDF(context.Context, string, []byte) ([]byte, error) {
	if c.release != nil {
		<-c.release
	}
	return c.pdf, c.err
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []SubmissionNotice
}

func (n *recordingNotifier) NotifySubmission(_ context.Context, notice SubmissionNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

func (n *recordingNotifier) all() []SubmissionNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SubmissionNotice(nil), n.notices...)
}

// setupSQLiteTestDB opens an in-memory database with every table migrated.
func setupSQLiteTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to SQLite test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
