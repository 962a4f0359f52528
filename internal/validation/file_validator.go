// Package validation checks the files the command line tool reads and
// writes.
package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"clientreport/internal/document"
)

// FileValidator validates input and output paths of a CLI run.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger.With(slog.String("component", "file_validator"))}
}

// ValidateOutputDirectory creates dir if needed and checks it is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	check, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	check.Close()
	os.Remove(check.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateFile checks that path is an existing, readable regular file.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	f.Close()
	return nil
}

// ValidateReportFile checks that path is a spreadsheet report as written by
// the XLSX encoder: the right extension, not an editor lock file, and a
// workbook containing the report sheet.
func (v *FileValidator) ValidateReportFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" {
		return fmt.Errorf("file %s is not an xlsx report (extension: %s)", path, ext)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("file %s is a temporary Excel file", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		v.logger.Error("Report is not a readable workbook",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("open report %s: %w", path, err)
	}
	defer f.Close()

	if !slices.Contains(f.GetSheetList(), document.SheetName) {
		return fmt.Errorf("report %s has no %q sheet", path, document.SheetName)
	}
	return nil
}
