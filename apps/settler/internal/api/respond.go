package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// writeJSONResponse writes a JSON response with the specified status code
func writeJSONResponse(logger *zap.Logger, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeErrorResponse writes an error response
func writeErrorResponse(logger *zap.Logger, w http.ResponseWriter, statusCode int, errorCode, message string) {
	writeJSONResponse(logger, w, statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
