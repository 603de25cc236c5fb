package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"retailcli/internal/dataprocessing"
	apperrors "retailcli/internal/errors"
	"retailcli/internal/infrastructure"
)

// FileValidator checks the input file and output directory before a run
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks that path exists, is a regular file and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateSourceFile checks the transaction table before loading. A missing
// or unreadable file is a LOAD error; a lock file or an unsupported file type
// is a VALIDATION error.
func (v *FileValidator) ValidateSourceFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return apperrors.NewLoadError("source file is not usable", err).
			WithContext("path", path)
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewAppValidationError("source is an Excel lock file").
			WithContext("path", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range dataprocessing.SupportedExtensions {
		if ext == supported {
			return nil
		}
	}

	v.logger.Error("Unsupported source file type",
		slog.String("file", path),
		slog.String("extension", ext))
	return apperrors.NewAppValidationError(
		fmt.Sprintf("unsupported file type %q, expected one of %s",
			ext, strings.Join(dataprocessing.SupportedExtensions, ", "))).
		WithContext("path", path)
}

// ValidateOutputDirectory ensures the output directory exists and is
// writable. Failures are STORAGE errors.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
