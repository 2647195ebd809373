package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/apimport/internal/spec"
)

// loadDocument loads and optionally validates cfg.Input, mapping structured
// spec errors into friendly usage errors.
func loadDocument(ctx context.Context, cfg *Config, log *slog.Logger) (*spec.ImportDescriptor, error) {
	log.Debug("loading document", "input", cfg.Input)
	desc, err := spec.Load(ctx, cfg.Input)
	if err != nil {
		log.Error("load failed", "input", cfg.Input, "err", err)
		return nil, specUsageError(err)
	}
	log.Debug("document parsed",
		"version", desc.Version,
		"format", desc.Format,
		"title", desc.Info.Title,
		"host", desc.Host,
		"basePath", desc.BasePath)

	if cfg.Validate {
		opts := []spec.Option{spec.WithAllowFileRefs(cfg.AllowFileRefs), spec.WithLogger(log)}
		if err := spec.Validate(ctx, desc, opts...); err != nil {
			log.Error("validation failed", "input", cfg.Input, "err", err)
			return nil, specUsageError(err)
		}
		log.Debug("document validated", "input", cfg.Input)
	}
	return desc, nil
}

func specUsageError(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := se.Message
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return newUsageError(msg)
}

// writeFileAtomic writes data via temp file + rename.
func writeFileAtomic(path string, data []byte) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("cannot create parent directory: %v", err))
	}
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return newUsageError(fmt.Sprintf("cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("cannot place file at %s: %v", absPath, err))
	}
	return nil
}
