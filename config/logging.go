package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// LogWriter receives application and database logs. It stays os.Stdout
// until InitLogging attaches the log file.
var LogWriter io.Writer = os.Stdout

// LogFilePath returns the backend log file location, overridable via LOG_FILE.
func LogFilePath() string {
	if p := os.Getenv("LOG_FILE"); p != "" {
		return p
	}
	return filepath.Join("logs", "cert-api.log")
}

// InitLogging opens the log file and tees the standard logger to it and
// stdout. A missing or unwritable file degrades to stdout only.
func InitLogging() (*os.File, io.Writer) {
	path := LogFilePath()
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create logs directory: %v", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Warning: Failed to open log file: %v", err)
		log.SetOutput(LogWriter)
		return nil, LogWriter
	}

	LogWriter = io.MultiWriter(os.Stdout, f)
	log.SetOutput(LogWriter)
	return f, LogWriter
}
