package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrFileExtension   = errors.New("invalid file extension")
	ErrFileContentType = errors.New("invalid file type")
)

// FileValidator checks an upload's size, extension and sniffed content type.
type FileValidator struct {
	allowedExt  map[string]bool
	allowedMime map[string]bool
	maxSize     int64
}

func NewFileValidator(exts, mimes []string, maxSizeMB int) *FileValidator {
	allowedExt := make(map[string]bool)
	for _, ext := range exts {
		if ext = strings.TrimSpace(strings.ToLower(ext)); ext != "" {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			allowedExt[ext] = true
		}
	}

	allowedMime := make(map[string]bool)
	for _, m := range mimes {
		if m = strings.TrimSpace(strings.ToLower(m)); m != "" {
			allowedMime[m] = true
		}
	}

	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}

	return &FileValidator{
		allowedExt:  allowedExt,
		allowedMime: allowedMime,
		maxSize:     int64(maxSizeMB) << 20,
	}
}

func (v *FileValidator) MaxSizeMB() int64 { return v.maxSize >> 20 }

// Validate returns the detected MIME type of an acceptable upload.
func (v *FileValidator) Validate(fh *multipart.FileHeader) (string, error) {
	if fh.Size > v.maxSize {
		return "", fmt.Errorf("%w (max %d MB)", ErrFileTooLarge, v.maxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !v.allowedExt[ext] {
		return "", ErrFileExtension
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	return v.sniff(f)
}

func (v *FileValidator) sniff(r io.Reader) (string, error) {
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to read file header: %w", err)
	}
	detected := strings.ToLower(strings.TrimSpace(strings.SplitN(m.String(), ";", 2)[0]))
	if !v.allowedMime[detected] {
		return "", ErrFileContentType
	}
	return detected, nil
}
