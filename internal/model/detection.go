package model

import "fmt"

// RawDetection is a single model output in canonical-image pixel coordinates.
type RawDetection struct {
	X1, Y1, X2, Y2 float32
	ClassID        int
	Confidence     float32
}

// Detection is the public shape of a detection.
type Detection struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// PredictionResult holds the mapped detections of one request, in model output order.
type PredictionResult struct {
	Detections []Detection
	TotalCount int
	Statistics map[string]int

	// Size of the canonical image the boxes refer to.
	ImageWidth  int
	ImageHeight int
}

// ClassTable maps model class ids to public labels.
type ClassTable map[int]string

// DefaultClassTable is the label set the document model was trained on.
func DefaultClassTable() ClassTable {
	return ClassTable{
		0: "qr",
		1: "signature",
		2: "stamp",
	}
}

// Name resolves a class id, falling back to class_<id> for ids outside the table.
func (t ClassTable) Name(classID int) string {
	if name, ok := t[classID]; ok {
		return name
	}
	return fmt.Sprintf("class_%d", classID)
}
