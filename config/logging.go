package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// LogWriter is the writer shared by the standard logger, gin and gorm.
var LogWriter io.Writer = os.Stdout

// LogFilePath returns the backend log file, overridable with LOG_FILE.
func LogFilePath() string {
	if p := os.Getenv("LOG_FILE"); p != "" {
		return p
	}
	return filepath.Join("logs", "lppm-api.log")
}

// InitLogging tees the standard logger into LogFilePath. The returned closer
// is nil when the file could not be opened and logging stays on stdout.
func InitLogging() io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	path := LogFilePath()
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		log.Printf("Warning: failed to create log directory: %v", err)
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Warning: failed to open log file %s: %v", path, err)
		LogWriter = os.Stdout
		log.SetOutput(LogWriter)
		return nil
	}

	LogWriter = io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(LogWriter)
	return logFile
}
