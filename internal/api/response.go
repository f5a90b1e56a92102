// Package api holds the JSON envelope shared by every HTTP handler.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
)

// SuccessResponse is the envelope for 2xx bodies.
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse is the envelope for error bodies. Code is the domain error
// code when there is one.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Data: data})
}

// Error writes a bare message, used for request decoding failures.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

var codeStatus = map[string]int{
	domain.ErrCodeValidation:       http.StatusBadRequest,
	domain.ErrCodeNotFound:         http.StatusNotFound,
	domain.ErrCodeAlreadyExists:    http.StatusConflict,
	domain.ErrCodeInvalidOperation: http.StatusConflict,
	domain.ErrCodeUnauthorized:     http.StatusUnauthorized,
	domain.ErrCodeForbidden:        http.StatusForbidden,
	domain.ErrCodeUnavailable:      http.StatusServiceUnavailable,
}

// DomainErrorToHTTP maps an error, wrapped or not, to a status code.
// Anything that is not a DomainError is a 500.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		if status, ok := codeStatus[de.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// HandleError writes err as an ErrorResponse. Client errors carry their
// cause; server errors only carry the domain message so upstream details
// stay in the logs.
func HandleError(w http.ResponseWriter, err error) {
	status := DomainErrorToHTTP(err)

	var de *domain.DomainError
	if !errors.As(err, &de) {
		log.Printf("api: unhandled error: %v", err)
		JSON(w, status, ErrorResponse{Error: http.StatusText(status)})
		return
	}

	resp := ErrorResponse{Error: de.Message, Code: de.Code}
	if status >= http.StatusInternalServerError {
		log.Printf("api: %v", err)
	} else if de.Err != nil {
		resp.Error += ": " + de.Err.Error()
	}
	JSON(w, status, resp)
}
