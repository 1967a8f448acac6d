package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the JSON logger used across the service. Output goes to
// stdout and, when FASTSHIP_LOG_FILE is set, to that file as well.
func NewLogger() *logrus.Logger {
	l := logrus.New()

	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warn":
		l.SetLevel(logrus.WarnLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	if logFile := os.Getenv("FASTSHIP_LOG_FILE"); logFile != "" {
		logFile = filepath.Clean(logFile)
		if err := os.MkdirAll(filepath.Dir(logFile), 0750); err != nil {
			log.Fatalf("Failed to create logs directory: %v", err)
		}
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		l.SetOutput(io.MultiWriter(os.Stdout, file))
	}

	return l
}
