package handler

import (
	"errors"
	"net/http"

	"docdetect/internal/dto"
	"docdetect/internal/logger"
	"docdetect/internal/service"
)

// HealthHandler reports liveness. It does not run the model.
func HealthHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !methodAllowed(w, r, http.MethodGet, http.MethodHead) {
			return
		}

		respondJSON(w, dto.HealthResponse{
			Status:              "ok",
			ModelLoaded:         manager.ModelLoaded(),
			ModelPath:           manager.ModelPath(),
			ConfidenceThreshold: manager.Threshold(),
		}, http.StatusOK)
	}
}

// ModelInfoHandler describes the loaded model and its class table.
func ModelInfoHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !methodAllowed(w, r, http.MethodGet, http.MethodHead) {
			return
		}

		info, err := modelInfo(manager)
		if err != nil {
			logger.Error("Failed to build model info: %v", err)
			respondJSON(w, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
			return
		}

		respondJSON(w, info, http.StatusOK)
	}
}

func modelInfo(manager *service.Manager) (*dto.ModelInfoResponse, error) {
	if !manager.ModelLoaded() {
		return nil, errors.New("model not loaded")
	}

	classes := make(map[int]string, len(manager.Classes()))
	for id, name := range manager.Classes() {
		classes[id] = name
	}

	return &dto.ModelInfoResponse{
		ModelPath:           manager.ModelPath(),
		Classes:             classes,
		ConfidenceThreshold: manager.Threshold(),
		ModelType:           manager.ModelType(),
		InputSize:           manager.InputSize(),
	}, nil
}
