package model

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"
)

func TestKindFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		expected DocumentKind
	}{
		{"contract.pdf", KindPDF},
		{"CONTRACT.PDF", KindPDF},
		{"scan.Pdf", KindPDF},
		{"pdf", KindPDF},
		{"photo.jpg", KindImage},
		{"photo.pdf.png", KindImage},
		{"archive.pdfx", KindImage},
		{"noextension", KindImage},
	}

	for _, tt := range tests {
		if got := KindFromFilename(tt.filename); got != tt.expected {
			t.Errorf("KindFromFilename(%q) = %v, expected %v", tt.filename, got, tt.expected)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"scan.png", "scan.png"},
		{"../../etc/passwd", "passwd"},
		{"C:\\Users\\me\\doc.pdf", "doc.pdf"},
		{"  spaced.jpg ", "spaced.jpg"},
		{"file\x00name.jpg", "filename.jpg"},
		{"", ""},
		{"/", ""},
		{"..", ""},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.input); got != tt.expected {
			t.Errorf("SanitizeFilename(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestNewUploadedDocument_EmptyName(t *testing.T) {
	_, err := NewUploadedDocument("", []byte("x"))
	if err == nil {
		t.Fatal("expected error for empty filename")
	}
	if KindOf(err) != ErrValidation {
		t.Errorf("expected validation kind, got %v", KindOf(err))
	}
	if !errors.Is(err, ErrEmptyFilename) {
		t.Errorf("expected ErrEmptyFilename in chain, got %v", err)
	}
}

func TestNewUploadedDocument_NameSanitizedAway(t *testing.T) {
	for _, name := range []string{"..", "/", "."} {
		doc, err := NewUploadedDocument(name, []byte("x"))
		if err != nil {
			t.Fatalf("%q should be accepted, got %v", name, err)
		}
		if doc.Filename != "" || doc.Kind != KindImage {
			t.Errorf("%q: expected empty sanitized name on the image path, got %q %v", name, doc.Filename, doc.Kind)
		}
	}
}

func TestClassTable_Name(t *testing.T) {
	table := DefaultClassTable()

	tests := []struct {
		id       int
		expected string
	}{
		{0, "qr"},
		{1, "signature"},
		{2, "stamp"},
		{3, "class_3"},
		{17, "class_17"},
		{-1, "class_-1"},
	}

	for _, tt := range tests {
		if got := table.Name(tt.id); got != tt.expected {
			t.Errorf("Name(%d) = %q, expected %q", tt.id, got, tt.expected)
		}
	}
}

func TestKindOf(t *testing.T) {
	base := NewError(ErrDecode, "normalize", errors.New("bad bytes"))
	wrapped := fmt.Errorf("predict: %w", base)

	if KindOf(wrapped) != ErrDecode {
		t.Errorf("expected decode kind through wrapping, got %v", KindOf(wrapped))
	}
	if StageOf(wrapped) != "normalize" {
		t.Errorf("expected stage normalize, got %s", StageOf(wrapped))
	}
	if KindOf(errors.New("plain")) != ErrInternal {
		t.Error("plain errors should be internal")
	}
	if StageOf(errors.New("plain")) != "unknown" {
		t.Error("plain errors should have unknown stage")
	}
}

func TestCanonicalFromImage_Gray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.SetGray(0, 0, color.Gray{Y: 10})
	src.SetGray(1, 0, color.Gray{Y: 200})

	img := CanonicalFromImage(src)
	if img.Width != 2 || img.Height != 1 || len(img.Pix) != 6 {
		t.Fatalf("unexpected shape %dx%d pix=%d", img.Width, img.Height, len(img.Pix))
	}

	r, g, b := rgbAt(img, 1, 0)
	if r != 200 || g != 200 || b != 200 {
		t.Errorf("expected gray expanded to (200,200,200), got (%d,%d,%d)", r, g, b)
	}
}

func TestCanonicalFromImage_DropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 100, G: 150, B: 200, A: 0})

	img := CanonicalFromImage(src)
	r, g, b := rgbAt(img, 0, 0)
	if r != 100 || g != 150 || b != 200 {
		t.Errorf("expected alpha dropped keeping (100,150,200), got (%d,%d,%d)", r, g, b)
	}
}

func rgbAt(img *CanonicalImage, x, y int) (r, g, b uint8) {
	i := (y*img.Width + x) * 3
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}
