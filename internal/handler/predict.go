package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"docdetect/internal/config"
	"docdetect/internal/dto"
	"docdetect/internal/logger"
	"docdetect/internal/middleware"
	"docdetect/internal/model"
	"docdetect/internal/service"
)

// multipartMemory is how much of a form is held in memory before spilling to disk.
const multipartMemory = 32 << 20

type errorReply struct {
	status  int
	message string
}

// Clients get a fixed message per kind; the cause only goes to the log.
var errorReplies = map[model.ErrorKind]errorReply{
	model.ErrValidation: {http.StatusBadRequest, "Invalid request"},
	model.ErrDecode:     {http.StatusBadRequest, "Failed to read image"},
	model.ErrConversion: {http.StatusBadRequest, "Failed to convert PDF to images"},
	model.ErrInference:  {http.StatusInternalServerError, "Inference failed"},
	model.ErrInternal:   {http.StatusInternalServerError, "Internal server error"},
}

// PredictHandler accepts a multipart upload in the "file" field and returns
// the detections found on the first page or image.
func PredictHandler(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !methodAllowed(w, r, http.MethodPost) {
			return
		}

		requestID := middleware.RequestIDFrom(r.Context())
		// The server's own writer must see the limit so it closes the connection.
		r.Body = http.MaxBytesReader(baseWriter(w), r.Body, cfg.MaxUploadBytes)

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logger.Warning("Upload rejected, over %d bytes (request %s)", cfg.MaxUploadBytes, requestID)
				respondError(w, "File too large", http.StatusRequestEntityTooLarge)
				return
			}
			respondError(w, model.ErrNoFile.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(w, model.ErrNoFile.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			logger.Error("Failed to read upload (request %s): %v", requestID, err)
			respondError(w, "Failed to read file", http.StatusBadRequest)
			return
		}

		doc, err := model.NewUploadedDocument(header.Filename, data)
		if err != nil {
			respondError(w, model.ErrEmptyFilename.Error(), http.StatusBadRequest)
			return
		}

		result, err := manager.Predict(requestID, doc)
		if err != nil {
			reply, ok := errorReplies[model.KindOf(err)]
			if !ok {
				reply = errorReplies[model.ErrInternal]
			}
			logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"filename":   doc.Filename,
				"bytes":      len(doc.Data),
				"stage":      model.StageOf(err),
				"kind":       model.KindOf(err).String(),
			}).Errorf("Prediction failed: %v", err)
			respondError(w, reply.message, reply.status)
			return
		}

		respondJSON(w, dto.PredictionResponse{
			Success:    true,
			Detections: result.Detections,
			TotalCount: result.TotalCount,
			Statistics: result.Statistics,
			Message:    fmt.Sprintf("Found %d objects", result.TotalCount),
		}, http.StatusOK)
	}
}
