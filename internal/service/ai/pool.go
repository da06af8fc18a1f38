package ai

import (
	"errors"
	"fmt"

	"docdetect/internal/config"
	"docdetect/internal/logger"
	"docdetect/internal/model"
)

// network is one loaded model handle. DetectorService is the only production
// implementation.
type network interface {
	Detect(img *model.CanonicalImage, threshold float32) ([]model.RawDetection, error)
	ModelType() string
	Close() error
}

// Pool hands out independently loaded networks, one request at a time each.
type Pool struct {
	detectors chan network
	all       []network
	modelType string
}

// NewPool loads config.DetectorWorkers networks. Any load failure closes the
// networks loaded so far and is returned.
func NewPool(config *config.Config, logger *logger.Logger) (*Pool, error) {
	pool := newPool(config.DetectorWorkers)

	for i := 0; i < config.DetectorWorkers; i++ {
		ds, err := NewDetectorService(config, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to load detector %d: %w", i, err)
		}
		pool.add(ds)
	}

	logger.Info("Detector pool ready with %d network(s)", len(pool.all))
	return pool, nil
}

func newPool(size int) *Pool {
	return &Pool{detectors: make(chan network, size)}
}

func (p *Pool) add(n network) {
	if len(p.all) == 0 {
		p.modelType = n.ModelType()
	}
	p.all = append(p.all, n)
	p.detectors <- n
}

// Detect borrows a network for the duration of one inference.
func (p *Pool) Detect(img *model.CanonicalImage, threshold float32) ([]model.RawDetection, error) {
	ds := <-p.detectors
	defer func() { p.detectors <- ds }()

	return ds.Detect(img, threshold)
}

// ModelType returns the label of the pooled networks.
func (p *Pool) ModelType() string {
	return p.modelType
}

// Loaded reports whether at least one network is held.
func (p *Pool) Loaded() bool {
	return len(p.all) > 0
}

// Close takes every network back from in-flight requests before releasing
// it, so it blocks until running inferences finish. The pool cannot be used
// afterwards.
func (p *Pool) Close() error {
	for range p.all {
		<-p.detectors
	}

	var errs []error
	for _, ds := range p.all {
		if err := ds.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.all = nil
	return errors.Join(errs...)
}
