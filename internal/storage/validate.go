// Package storage is the object store used for budget attachments: it checks
// files before they are accepted, lays out their paths, and streams them to
// an ObjectStore while reporting progress.
package storage

import (
	"bytes"  // Replay of the sniffed content
	"fmt"    // Error wrapping
	"io"     // Readers
	"mime"   // Media type parsing
	"slices" // Allow-list lookup

	"eventflow/internal/domain" // Error kinds

	"github.com/gabriel-vasile/mimetype" // Content type detection
)

// MaxFileSize is the largest accepted upload: 5 MiB
const MaxFileSize int64 = 5 * 1024 * 1024

// AllowedFileTypes lists the accepted MIME types
var AllowedFileTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"image/jpeg",
	"image/png",
}

func init() {
	// Word and Excel 97-2003 files are told apart by a directory sector that
	// can sit anywhere in the file, so detection looks at all of it.
	mimetype.SetLimit(0)
}

// FileInfo describes a file offered for upload
type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
}

// ValidateFile rejects files that are too large or of a type outside AllowedFileTypes.
// The size check comes first and applies whatever the type.
func ValidateFile(f FileInfo) error {
	if f.Size > MaxFileSize {
		return domain.Validationf("file size must be less than %dMB", MaxFileSize/1024/1024)
	}
	if !IsAllowedType(f.ContentType) {
		return domain.Validationf("invalid file type, please upload a PDF, Word, Excel, or image file")
	}
	return nil
}

// IsAllowedType reports whether a MIME type, parameters ignored, is accepted
func IsAllowedType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return slices.Contains(AllowedFileTypes, mediaType)
}

// SniffContent reads the whole content, at most MaxFileSize bytes, detects its
// type and rejects content that is not one of AllowedFileTypes. The returned
// reader replays the content.
func SniffContent(r io.Reader) (string, io.Reader, error) {
	content, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1)) // One byte over tells an oversized file apart
	if err != nil {
		return "", nil, fmt.Errorf("read file: %w", err)
	}
	if int64(len(content)) > MaxFileSize {
		return "", nil, domain.Validationf("file size must be less than %dMB", MaxFileSize/1024/1024)
	}
	detected := mimetype.Detect(content)
	// Walk up from the most specific type, so docx matches before zip
	for m := detected; m != nil; m = m.Parent() {
		if IsAllowedType(m.String()) {
			return m.String(), bytes.NewReader(content), nil
		}
	}
	return "", nil, domain.Validationf("file content (%s) is not an accepted type", detected.String())
}
