package cmd

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"pdf-insight/internal/answering"
	"pdf-insight/internal/config"

	"github.com/joho/godotenv"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if err := LoadEnvFromPath(configPath); err != nil {
		log.Fatal(err)
	}
}

func LoadEnvFromPath(configPath string) error {
	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return nil
	}

	log.Printf("loading env from file %s", configPath)
	if err := godotenv.Load(configPath); err != nil {
		return fmt.Errorf("error loading .env file '%s': %w", configPath, err)
	}
	return nil
}

// SetupLogging tees log output into logFile when it is set. The returned
// func closes the file.
func SetupLogging(logFile string) (func(), error) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if logFile == "" {
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating directory for log file: %w", err)
	}

	f, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	log.SetOutput(io.MultiWriter(f, os.Stderr))
	slog.Info("logging to file", "path", logFile)

	return func() { f.Close() }, nil
}

func NewAnsweringClient(cfg config.Config, recorder answering.Recorder) (*answering.Client, error) {
	backend, err := answering.NewBackend(cfg.Backend())
	if err != nil {
		return nil, fmt.Errorf("error creating answering backend: %w", err)
	}

	opts := []answering.ClientOption{answering.WithMaxRetries(cfg.AnswerMaxRetries)}
	if recorder != nil {
		opts = append(opts, answering.WithRecorder(recorder))
	}
	if cfg.AnswerAttemptTimeout > 0 {
		opts = append(opts, answering.WithTimeout(cfg.AnswerAttemptTimeout))
	}

	slog.Info("answering backend ready", "provider", cfg.LLMProvider, "model", cfg.LLMModel, "max_retries", cfg.AnswerMaxRetries, "attempt_timeout", cfg.AnswerAttemptTimeout)
	return answering.NewClient(backend, opts...), nil
}
