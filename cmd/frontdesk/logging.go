package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/config"
)

func setupLogging(w io.Writer, cfg config.LoggingConfig) error {
	level, err := common.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	return common.SetupLogger(w, level, cfg.Format)
}

// redirectLogs sends the logs to cfg.File while the TUI owns the terminal.
// The returned function closes the file.
func redirectLogs(cfg config.LoggingConfig) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if err := setupLogging(f, cfg); err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() { _ = f.Close() }, nil
}
