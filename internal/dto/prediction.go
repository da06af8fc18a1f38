package dto

import "docdetect/internal/model"

// PredictionResponse is the /predict success body.
type PredictionResponse struct {
	Success    bool              `json:"success"`
	Detections []model.Detection `json:"detections"`
	TotalCount int               `json:"total_count"`
	Statistics map[string]int    `json:"statistics"`
	Message    string            `json:"message"`
}

// ErrorResponse is the /predict failure body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
