// Package httpx writes the JSON envelopes of the API.
package httpx

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// DataResponse wraps a single resource.
type DataResponse struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// PageResponse wraps one page of a collection.
type PageResponse struct {
	Data        any    `json:"data"`
	CurrentPage int    `json:"current_page"`
	PerPage     int    `json:"per_page"`
	Total       int64  `json:"total"`
	LastPage    int    `json:"last_page"`
	Message     string `json:"message,omitempty"`
}

// ValidationResponse reports field violations.
type ValidationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, code, msg string) {
	JSON(w, status, ErrorResponse{Error: code, Message: msg})
}

// Data writes {data, message}.
func Data(w http.ResponseWriter, status int, data any, msg string) {
	JSON(w, status, DataResponse{Data: data, Message: msg})
}

// Page writes a paginated collection. perPage must be positive.
func Page(w http.ResponseWriter, items any, page, perPage int, total int64, msg string) {
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	JSON(w, http.StatusOK, PageResponse{
		Data:        items,
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    last,
		Message:     msg,
	})
}

// Validation writes a 422 with the per-field messages.
func Validation(w http.ResponseWriter, msg string, errs map[string][]string) {
	JSON(w, http.StatusUnprocessableEntity, ValidationResponse{Message: msg, Errors: errs})
}
