package ai

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"docdetect/internal/config"
	"docdetect/internal/logger"
	"docdetect/internal/model"
)

// DetectorService owns one loaded network. A gocv.Net is not safe for
// concurrent Forward calls; share it through a Pool.
type DetectorService struct {
	net          gocv.Net
	modelPath    string
	configPath   string
	inputSize    int
	nmsThreshold float32
	logger       *logger.Logger
}

// NewDetectorService loads the network described by config. Load failures are
// returned; the service does not start without a model.
func NewDetectorService(config *config.Config, logger *logger.Logger) (*DetectorService, error) {
	service := &DetectorService{
		modelPath:    config.ModelPath,
		configPath:   config.ConfigPath,
		inputSize:    config.ModelInputSize,
		nmsThreshold: float32(config.NMSThreshold),
		logger:       logger,
	}

	if err := service.initializeNet(); err != nil {
		return nil, err
	}
	return service, nil
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	if s.configPath != "" {
		if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %s", s.configPath)
		}
	}

	net := gocv.ReadNet(s.modelPath, s.configPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network from %s", s.modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.logger.Info("Detection network initialized from %s", s.modelPath)
	return nil
}

// Detect runs the network over img and returns boxes in img pixel coordinates,
// highest score first. Boxes below threshold never leave this function.
func (s *DetectorService) Detect(img *model.CanonicalImage, threshold float32) ([]model.RawDetection, error) {
	if s.net.Empty() {
		return nil, model.NewError(model.ErrInference, "detect", fmt.Errorf("detection network not initialized"))
	}
	if img == nil || img.Width <= 0 || img.Height <= 0 || len(img.Pix) != img.Width*img.Height*3 {
		return nil, model.NewError(model.ErrInference, "detect", fmt.Errorf("malformed image buffer"))
	}

	mat, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, img.Pix)
	if err != nil {
		return nil, model.NewError(model.ErrInference, "detect", fmt.Errorf("failed to build mat: %w", err))
	}
	defer mat.Close()

	// Pixels are already RGB, so no channel swap.
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(s.inputSize, s.inputSize), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	s.net.SetInput(blob, "")
	output := s.net.Forward("")
	defer output.Close()

	if output.Empty() {
		return nil, model.NewError(model.ErrInference, "detect", fmt.Errorf("network returned no output"))
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, model.NewError(model.ErrInference, "detect", fmt.Errorf("failed to read output: %w", err))
	}

	scaleX := float32(img.Width) / float32(s.inputSize)
	scaleY := float32(img.Height) / float32(s.inputSize)

	candidates, err := decodeYOLO(data, output.Size(), threshold, scaleX, scaleY, img.Width, img.Height)
	if err != nil {
		return nil, model.NewError(model.ErrInference, "detect", err)
	}
	if len(candidates) == 0 {
		return []model.RawDetection{}, nil
	}

	results := suppress(candidates, img.Width, img.Height, s.nmsThreshold)

	s.logger.Debug("Network returned %d candidates, %d after suppression", len(candidates), len(results))
	return results, nil
}

// ModelType is a human-readable label of the loaded network.
func (s *DetectorService) ModelType() string {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(s.modelPath)), ".")
	if format == "" {
		format = "unknown"
	}
	return fmt.Sprintf("gocv.Net (%s)", format)
}

// Close releases the network.
func (s *DetectorService) Close() error {
	return s.net.Close()
}
