package result

import (
	"math"

	"docdetect/internal/model"
)

// Mapper converts raw detector output into the public detection shape.
type Mapper struct {
	classes model.ClassTable
}

// NewMapper creates a Mapper resolving labels through classes.
func NewMapper(classes model.ClassTable) *Mapper {
	return &Mapper{classes: classes}
}

// Classes returns the label table used for resolution.
func (m *Mapper) Classes() model.ClassTable {
	return m.classes
}

// Map keeps model output order and counts detections per resolved class name.
func (m *Mapper) Map(raw []model.RawDetection, width, height int) *model.PredictionResult {
	res := &model.PredictionResult{
		Detections:  make([]model.Detection, 0, len(raw)),
		Statistics:  make(map[string]int),
		ImageWidth:  width,
		ImageHeight: height,
	}

	for _, r := range raw {
		d := m.ToDetection(r)
		res.Detections = append(res.Detections, d)
		res.Statistics[d.Class]++
	}
	res.TotalCount = len(res.Detections)

	return res
}

// ToDetection converts corner coordinates to top-left plus extent. All four
// integers are truncated toward zero, not rounded.
func (m *Mapper) ToDetection(r model.RawDetection) model.Detection {
	return model.Detection{
		X:          int(r.X1),
		Y:          int(r.Y1),
		Width:      int(r.X2 - r.X1),
		Height:     int(r.Y2 - r.Y1),
		Class:      m.classes.Name(r.ClassID),
		Confidence: RoundConfidence(r.Confidence),
	}
}

// RoundConfidence rounds to three decimals, half away from zero, and clamps to [0,1].
func RoundConfidence(c float32) float64 {
	v := math.Round(float64(c)*1000) / 1000
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
