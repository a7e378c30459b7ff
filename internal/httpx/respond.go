// Package httpx translates service results and taxonomy errors into JSON
// responses. Handlers stay thin: decode, call the service, respond.
package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"deptlib/internal/fault"
)

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// Decode reads a JSON request body into v. Malformed bodies surface as
// validation errors, not internal ones.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fault.Validation([]string{"malformed request body"})
	}
	return nil
}

type errorBody struct {
	Kind     fault.Kind `json:"kind"`
	Message  string     `json:"message"`
	Problems []string   `json:"problems,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// Error maps a domain error onto an HTTP status and a structured body
// carrying the machine-readable kind next to the human-readable message.
// Anything outside the taxonomy is logged and reported as internal.
func Error(w http.ResponseWriter, err error) {
	var fe *fault.Error
	if errors.As(err, &fe) {
		JSON(w, statusFor(fe.Kind), errorEnvelope{Error: errorBody{
			Kind:     fe.Kind,
			Message:  fe.Message,
			Problems: fe.Problems,
		}})
		return
	}

	log.Printf("internal error: %v", err)
	JSON(w, http.StatusInternalServerError, errorEnvelope{Error: errorBody{
		Kind:    "internal",
		Message: "internal error",
	}})
}

func statusFor(kind fault.Kind) int {
	switch kind {
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindUnavailable, fault.KindLimitReached, fault.KindAlreadyReturned, fault.KindDuplicateEmail:
		return http.StatusConflict
	case fault.KindNotAuthorized:
		return http.StatusForbidden
	case fault.KindValidation:
		return http.StatusBadRequest
	case fault.KindUnauthenticated:
		return http.StatusUnauthorized
	case fault.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
