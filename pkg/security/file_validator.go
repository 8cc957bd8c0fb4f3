package security

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrNoExtension         = errors.New("file has no extension")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrContentMismatch     = errors.New("file content does not match extension")
)

// pdfMagic is the "%PDF" header every PDF starts with.
var pdfMagic = []byte{0x25, 0x50, 0x44, 0x46}

// Allowed file extensions (strict whitelist)
var allowedExtensions = map[string]bool{
	".pdf": true,
}

// ValidateFileExtension checks only the extension, before any bytes are read.
func ValidateFileExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == "" {
		return ErrNoExtension
	}
	if !allowedExtensions[ext] {
		return errors.Join(ErrExtensionNotAllowed, errors.New(ext))
	}
	return nil
}

// ValidatePDF performs the full check on an uploaded document:
// 1. Extension whitelist
// 2. Magic bytes
// 3. Sniffed MIME type
func ValidatePDF(filename string, data []byte) error {
	if err := ValidateFileExtension(filename); err != nil {
		return err
	}
	if len(data) < len(pdfMagic) || !bytes.HasPrefix(data, pdfMagic) {
		return ErrContentMismatch
	}
	if mime := http.DetectContentType(data); mime != "application/pdf" {
		return errors.Join(ErrContentMismatch, errors.New("detected "+mime))
	}
	return nil
}
