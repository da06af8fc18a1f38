package service

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"docdetect/internal/config"
	"docdetect/internal/logger"
	"docdetect/internal/model"
	"docdetect/internal/service/result"
	"docdetect/internal/service/websocket"
)

// Detector runs the pretrained model. Implementations must already exclude
// detections scoring below threshold.
type Detector interface {
	Detect(img *model.CanonicalImage, threshold float32) ([]model.RawDetection, error)
	ModelType() string
	Loaded() bool
}

// Normalizer produces the canonical image for an upload.
type Normalizer interface {
	Normalize(doc *model.UploadedDocument) (*model.CanonicalImage, error)
}

// Manager runs the normalize -> detect -> map pipeline. It holds no per-request
// state, so one Manager serves all requests.
type Manager struct {
	normalizer       Normalizer
	detector         Detector
	mapper           *result.Mapper
	websocketService *websocket.HubService
	logger           *logger.Logger

	modelPath string
	threshold float64
	inputSize int
}

// NewManager wires the pipeline. hub may be nil when the live feed is disabled.
func NewManager(cfg *config.Config, normalizer Normalizer, detector Detector, mapper *result.Mapper,
	hub *websocket.HubService, logger *logger.Logger) *Manager {
	return &Manager{
		normalizer:       normalizer,
		detector:         detector,
		mapper:           mapper,
		websocketService: hub,
		logger:           logger,
		modelPath:        cfg.ModelPath,
		threshold:        cfg.ConfidenceThreshold,
		inputSize:        cfg.ModelInputSize,
	}
}

// Predict runs one upload through the pipeline. Errors carry a model.ErrorKind.
func (m *Manager) Predict(requestID string, doc *model.UploadedDocument) (*model.PredictionResult, error) {
	entry := m.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"filename":   doc.Filename,
		"bytes":      len(doc.Data),
		"kind":       doc.Kind.String(),
	})
	entry.Info("Processing file")

	img, err := m.normalizer.Normalize(doc)
	if err != nil {
		return nil, classify(err, model.ErrInternal, "normalize")
	}
	entry.WithFields(logrus.Fields{"width": img.Width, "height": img.Height}).Debug("Canonical image ready")

	raw, err := m.detector.Detect(img, float32(m.threshold))
	if err != nil {
		return nil, classify(err, model.ErrInference, "detect")
	}

	raw = m.enforceThreshold(entry, raw)
	res := m.mapper.Map(raw, img.Width, img.Height)
	entry.WithField("total_count", res.TotalCount).Info("Found objects")

	if m.websocketService != nil {
		m.websocketService.Publish(websocket.PredictionEvent{
			RequestID:  requestID,
			Filename:   doc.Filename,
			Kind:       doc.Kind.String(),
			TotalCount: res.TotalCount,
			Statistics: res.Statistics,
			Width:      res.ImageWidth,
			Height:     res.ImageHeight,
			Timestamp:  time.Now(),
		})
	}

	return res, nil
}

// enforceThreshold drops detections the model should already have excluded.
func (m *Manager) enforceThreshold(entry *logrus.Entry, raw []model.RawDetection) []model.RawDetection {
	threshold := float32(m.threshold)
	kept := raw[:0:0]
	for _, d := range raw {
		if d.Confidence >= threshold {
			kept = append(kept, d)
		}
	}
	if dropped := len(raw) - len(kept); dropped > 0 {
		entry.Warnf("Detector returned %d detection(s) below threshold %.3f", dropped, m.threshold)
	}
	return kept
}

// classify keeps an existing kind or assigns fallback when err carries none.
func classify(err error, fallback model.ErrorKind, stage string) error {
	var pe *model.PipelineError
	if errors.As(err, &pe) {
		return err
	}
	return model.NewError(fallback, stage, err)
}

func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.websocketService
}

func (m *Manager) ModelPath() string {
	return m.modelPath
}

func (m *Manager) Threshold() float64 {
	return m.threshold
}

func (m *Manager) InputSize() int {
	return m.inputSize
}

func (m *Manager) Classes() model.ClassTable {
	return m.mapper.Classes()
}

func (m *Manager) ModelType() string {
	return m.detector.ModelType()
}

func (m *Manager) ModelLoaded() bool {
	return m.detector != nil && m.detector.Loaded()
}
