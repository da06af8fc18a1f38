package dto

// HealthResponse is the /health body.
type HealthResponse struct {
	Status              string  `json:"status"`
	ModelLoaded         bool    `json:"model_loaded"`
	ModelPath           string  `json:"model_path"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// ModelInfoResponse is the /model-info body. Class ids become JSON object keys.
type ModelInfoResponse struct {
	ModelPath           string         `json:"model_path"`
	Classes             map[int]string `json:"classes"`
	ConfidenceThreshold float64        `json:"confidence_threshold"`
	ModelType           string         `json:"model_type"`
	InputSize           int            `json:"input_size"`
}
