package document

import (
	"fmt"
	"image"
	"math"

	"github.com/gen2brain/go-fitz"

	"docdetect/internal/model"
)

// Rasterizer renders the first page of a PDF file. A page that would render to
// more than maxPixels pixels is refused before rendering.
type Rasterizer interface {
	FirstPage(path string, dpi float64, maxPixels int64) (image.Image, error)
}

// FitzRasterizer renders through MuPDF. Each call opens its own document, so
// concurrent requests don't share MuPDF state.
type FitzRasterizer struct{}

// FirstPage renders page one at dpi. Later pages are never touched.
func (FitzRasterizer) FirstPage(path string, dpi float64, maxPixels int64) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, model.ErrNoPages
	}

	// Bound is in points; rendering scales it by dpi/72.
	bound, err := doc.Bound(0)
	if err != nil {
		return nil, fmt.Errorf("failed to read first page size: %w", err)
	}
	w := math.Ceil(float64(bound.Dx()) * dpi / 72)
	h := math.Ceil(float64(bound.Dy()) * dpi / 72)
	if w*h > float64(maxPixels) {
		return nil, fmt.Errorf("%w: first page renders to %.0fx%.0f at %v dpi", model.ErrTooManyPixels, w, h, dpi)
	}

	img, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render first page: %w", err)
	}
	return img, nil
}
