package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"chocobliss/apperr"
	"chocobliss/middleware"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error   string              `json:"error"`
	Kind    string              `json:"kind"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps err onto the wire error body. Internal errors are logged
// and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.Kind(err)
	body := errorBody{Error: err.Error(), Kind: kind, Details: apperr.Fields(err)}
	switch kind {
	case "internal":
		log.Printf("request_id=%s method=%s path=%s error=%q", middleware.RequestID(r.Context()), r.Method, r.URL.Path, err)
		body.Error = "Something went wrong!"
	case "validation":
		body.Error = "Validation failed"
	}
	writeJSON(w, apperr.HTTPStatus(err), body)
}

// decodeJSON reads a single JSON object from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("body", "request body is empty")
		}
		return apperr.Invalid("body", "invalid JSON: "+err.Error())
	}
	return nil
}

type messageBody struct {
	Message string `json:"message"`
}
