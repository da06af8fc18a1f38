package document

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"docdetect/internal/config"
	"docdetect/internal/logger"
	"docdetect/internal/model"
)

// Normalizer turns an uploaded document into a canonical RGB image whose
// longer side never exceeds the configured maximum.
type Normalizer struct {
	maxSize    int
	maxPixels  int64
	dpi        float64
	rasterizer Rasterizer
	tempDir    string // "" means os.TempDir()
	logger     *logger.Logger
}

// NewNormalizer creates a Normalizer that rasterizes PDFs with MuPDF.
func NewNormalizer(cfg *config.Config, logger *logger.Logger) *Normalizer {
	return &Normalizer{
		maxSize:    cfg.MaxImageSize,
		maxPixels:  cfg.MaxDecodePixels,
		dpi:        cfg.PDFDPI,
		rasterizer: FitzRasterizer{},
		logger:     logger,
	}
}

// Normalize decodes or rasterizes doc, then fixes the color layout and size.
func (n *Normalizer) Normalize(doc *model.UploadedDocument) (*model.CanonicalImage, error) {
	var (
		img image.Image
		err error
	)

	switch doc.Kind {
	case model.KindPDF:
		img, err = n.rasterizePDF(doc.Data)
	default:
		img, err = decodeRaster(doc.Data, n.maxPixels)
	}
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	n.logger.Debug("Loaded %s %s: %dx%d", doc.Kind, doc.Filename, b.Dx(), b.Dy())

	opaque := dropAlpha(img)

	w, h, resized := fitWithin(b.Dx(), b.Dy(), n.maxSize)
	if resized {
		opaque = imaging.Resize(opaque, w, h, imaging.Lanczos)
		n.logger.Info("Image resized from %dx%d to %dx%d", b.Dx(), b.Dy(), w, h)
	}

	return model.CanonicalFromImage(opaque), nil
}

// decodeRaster checks the declared dimensions against maxPixels before any
// pixel buffer is allocated, then tries every registered decoder and finally
// libwebp for WebP variants the pure Go decoder rejects. EXIF orientation is
// ignored: boxes refer to the stored pixel grid.
func decodeRaster(data []byte, maxPixels int64) (image.Image, error) {
	w, h, err := rasterSize(data)
	if err != nil {
		return nil, model.NewError(model.ErrDecode, "decode", fmt.Errorf("failed to decode image: %w", err))
	}
	if err := checkPixels(w, h, maxPixels); err != nil {
		return nil, model.NewError(model.ErrDecode, "decode", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}

	if wimg, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return wimg, nil
	}

	return nil, model.NewError(model.ErrDecode, "decode", fmt.Errorf("failed to decode image: %w", err))
}

// rasterSize reads only the image header.
func rasterSize(data []byte) (int, int, error) {
	if len(data) == 0 {
		return 0, 0, errors.New("empty upload")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		return cfg.Width, cfg.Height, nil
	}

	if w, h, _, werr := webp.GetInfo(data); werr == nil {
		return w, h, nil
	}
	return 0, 0, err
}

// checkPixels rejects empty images and images declaring more than limit pixels.
func checkPixels(w, h int, limit int64) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", w, h)
	}
	if int64(w)*int64(h) > limit {
		return fmt.Errorf("%w: %dx%d is over %d pixels", model.ErrTooManyPixels, w, h, limit)
	}
	return nil
}

// rasterizePDF spills the upload to a temp file for the rasterizer. The file is
// removed before returning on every path.
func (n *Normalizer) rasterizePDF(data []byte) (image.Image, error) {
	tmp, err := os.CreateTemp(n.tempDir, "upload-*.pdf")
	if err != nil {
		return nil, model.NewError(model.ErrInternal, "rasterize", fmt.Errorf("failed to create temp file: %w", err))
	}
	path := tmp.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			n.logger.Warning("Failed to remove temp file %s: %v", path, err)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, model.NewError(model.ErrInternal, "rasterize", fmt.Errorf("failed to write temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return nil, model.NewError(model.ErrInternal, "rasterize", fmt.Errorf("failed to close temp file: %w", err))
	}

	img, err := n.rasterizer.FirstPage(path, n.dpi, n.maxPixels)
	if err != nil {
		return nil, model.NewError(model.ErrConversion, "rasterize", err)
	}
	return img, nil
}

// dropAlpha returns an opaque NRGBA copy: gray expands to three channels and the
// alpha channel is discarded rather than composited.
func dropAlpha(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// fitWithin scales (w, h) down so the longer side equals limit. The longer side is
// set exactly; the shorter one is truncated and kept at least one pixel.
func fitWithin(w, h, limit int) (int, int, bool) {
	long := w
	if h > long {
		long = h
	}
	if long <= limit {
		return w, h, false
	}

	if w >= h {
		return limit, scaleSide(h, limit, long), true
	}
	return scaleSide(w, limit, long), limit, true
}

// scaleSide computes side*limit/long in integers so exact ratios stay exact.
func scaleSide(side, limit, long int) int {
	v := int(int64(side) * int64(limit) / int64(long))
	if v < 1 {
		return 1
	}
	return v
}
