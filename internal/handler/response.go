package handler

import (
	"encoding/json"
	"net/http"

	"docdetect/internal/dto"
)

// respondJSON encodes before writing so a marshal failure can still become a 500.
func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, dto.ErrorResponse{Success: false, Error: message}, status)
}

func methodAllowed(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// baseWriter strips middleware wrappers that expose Unwrap.
func baseWriter(w http.ResponseWriter) http.ResponseWriter {
	for {
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return w
		}
		w = u.Unwrap()
	}
}
