package ai

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"docdetect/internal/model"
)

// decodeYOLO reads a YOLO head output into thresholded candidates scaled back to
// image pixels. Two layouts are accepted:
//
//	[1, 4+nc, anchors]  (v8 style, no objectness)
//	[1, anchors, 5+nc]  (v5 style, objectness at index 4)
//
// The layout is picked by which axis is longer, since anchors outnumber channels.
func decodeYOLO(data []float32, dims []int, threshold, scaleX, scaleY float32, width, height int) ([]model.RawDetection, error) {
	if len(dims) == 3 {
		if dims[0] != 1 {
			return nil, fmt.Errorf("unsupported batch size %d", dims[0])
		}
		dims = dims[1:]
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("unsupported output shape %v", dims)
	}

	rows, cols := dims[0], dims[1]
	if len(data) < rows*cols {
		return nil, fmt.Errorf("output has %d values, shape %v needs %d", len(data), dims, rows*cols)
	}

	var (
		anchors, channels int
		at                func(anchor, channel int) float32
		objectness        bool
	)

	if rows < cols {
		anchors, channels = cols, rows
		at = func(a, c int) float32 { return data[c*cols+a] }
	} else {
		anchors, channels = rows, cols
		at = func(a, c int) float32 { return data[a*cols+c] }
		objectness = true
	}

	first := 4
	if objectness {
		first = 5
	}
	if channels <= first {
		return nil, fmt.Errorf("output has %d channels, no class scores", channels)
	}

	var out []model.RawDetection
	for a := 0; a < anchors; a++ {
		classID, score := -1, float32(0)
		for c := first; c < channels; c++ {
			if v := at(a, c); v > score {
				classID, score = c-first, v
			}
		}
		if objectness {
			score *= at(a, 4)
		}
		if classID < 0 || score < threshold {
			continue
		}

		cx, cy, w, h := at(a, 0), at(a, 1), at(a, 2), at(a, 3)
		out = append(out, model.RawDetection{
			X1:         clampF((cx-w/2)*scaleX, 0, float32(width)),
			Y1:         clampF((cy-h/2)*scaleY, 0, float32(height)),
			X2:         clampF((cx+w/2)*scaleX, 0, float32(width)),
			Y2:         clampF((cy+h/2)*scaleY, 0, float32(height)),
			ClassID:    classID,
			Confidence: score,
		})
	}
	return out, nil
}

// suppress runs per-class non-max suppression over candidates that already
// passed the confidence threshold. NMSBoxes compares scores strictly, so it gets
// a zero score threshold and a candidate exactly at the threshold survives.
func suppress(candidates []model.RawDetection, width, height int, nmsThreshold float32) []model.RawDetection {
	rects, scores := nmsInputs(candidates, width, height)
	keep := gocv.NMSBoxes(rects, scores, 0, nmsThreshold)

	results := make([]model.RawDetection, 0, len(keep))
	for _, i := range keep {
		results = append(results, candidates[i])
	}
	return results
}

// nmsInputs builds integer rectangles for NMSBoxes. Each class is shifted to its
// own region so suppression only happens within a class.
func nmsInputs(candidates []model.RawDetection, width, height int) ([]image.Rectangle, []float32) {
	offset := width
	if height > offset {
		offset = height
	}
	offset++

	rects := make([]image.Rectangle, len(candidates))
	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		shift := c.ClassID * offset
		rects[i] = image.Rect(int(c.X1)+shift, int(c.Y1)+shift, int(c.X2)+shift, int(c.Y2)+shift)
		scores[i] = c.Confidence
	}
	return rects, scores
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
