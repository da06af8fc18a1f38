package model

import (
	"path/filepath"
	"strings"
)

// DocumentKind decides which normalization path an upload takes.
type DocumentKind int

const (
	KindImage DocumentKind = iota
	KindPDF
)

func (k DocumentKind) String() string {
	if k == KindPDF {
		return "pdf"
	}
	return "image"
}

// UploadedDocument is the raw upload for a single request.
type UploadedDocument struct {
	Filename string
	Data     []byte
	Kind     DocumentKind
}

// NewUploadedDocument sanitizes the declared filename and classifies the upload by its
// extension. Only an empty declared name is a validation error; a name that sanitizes
// to nothing (such as "..") has no extension and takes the raster path.
func NewUploadedDocument(filename string, data []byte) (*UploadedDocument, error) {
	if filename == "" {
		return nil, NewError(ErrValidation, "validate", ErrEmptyFilename)
	}
	name := SanitizeFilename(filename)
	return &UploadedDocument{
		Filename: name,
		Data:     data,
		Kind:     KindFromFilename(name),
	}, nil
}

// KindFromFilename looks only at the lowercased suffix after the last dot. A name without a
// dot is treated as its own extension.
func KindFromFilename(filename string) DocumentKind {
	parts := strings.Split(strings.ToLower(filename), ".")
	if parts[len(parts)-1] == "pdf" {
		return KindPDF
	}
	return KindImage
}

// SanitizeFilename strips directories, both slash styles, NUL bytes and surrounding spaces.
func SanitizeFilename(filename string) string {
	name := strings.ReplaceAll(filename, "\x00", "")
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(filepath.Base(name))
	switch name {
	case ".", "..", "/":
		return ""
	}
	return name
}
