package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jadaunkg/horizon/internal/core"
)

type meta struct {
	Timestamp time.Time `json:"timestamp"`
}

type successResponse struct {
	Data any  `json:"data"`
	Meta meta `json:"meta"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeJSON writes a success envelope with data
func writeJSON(w http.ResponseWriter, status int, data any) {
	resp := successResponse{
		Data: data,
		Meta: meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// writeError writes an error envelope, surfacing core error codes
func writeError(w http.ResponseWriter, status int, err error) {
	detail := errorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		detail.Code = coreErr.Code
		detail.Message = coreErr.Message
		if coreErr.Cause != nil {
			detail.Cause = coreErr.Cause.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: detail})
}
