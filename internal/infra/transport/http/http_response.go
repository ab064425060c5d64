package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrupp/wtwr/internal/domain"
)

// InternalErrorMessage is the only message ever sent for KindInternal errors.
const InternalErrorMessage = "An error has occurred on the server"

const (
	NotFoundMessage         = "Requested resource not found"
	MethodNotAllowedMessage = "Method not allowed"
)

// ErrResponseStarted marks failures that happened after the status line was
// sent. WriteError ignores them since nothing more can be said to the client.
var ErrResponseStarted = errors.New("response already started")

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// DataResponse wraps a single resource.
type DataResponse struct {
	Data any `json:"data"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

//nolint:gochecknoglobals
var kindStatus = map[domain.Kind]int{
	domain.KindBadRequest:   http.StatusBadRequest,
	domain.KindUnauthorized: http.StatusUnauthorized,
	domain.KindForbidden:    http.StatusForbidden,
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindConflict:     http.StatusConflict,
	domain.KindInternal:     http.StatusInternalServerError,
}

// StatusForKind maps an error kind to its HTTP status.
func StatusForKind(kind domain.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", errors.Join(ErrResponseStarted, err))
	}

	return nil
}

// WriteError classifies err and writes the matching status and client-safe
// message. Internal errors never expose their text.
func WriteError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrResponseStarted) {
		return
	}

	status := http.StatusInternalServerError
	message := InternalErrorMessage

	if derr, ok := domain.AsError(err); ok && derr.Kind != domain.KindInternal {
		status = StatusForKind(derr.Kind)
		message = derr.Message
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="wtwr"`)
	}

	_ = WriteJSON(w, status, ErrorResponse{Message: message})
}

// DecodeJSON decodes a request body of at most maxBytes into v.
// Any decoding failure is a KindBadRequest error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.Join(domain.BadRequestf("Request body too large"), err)
		}

		return errors.Join(domain.ErrInvalidBody, err)
	}

	return nil
}

// NotFoundHandler answers every request with a JSON 404.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = WriteJSON(w, http.StatusNotFound, ErrorResponse{Message: NotFoundMessage})
	})
}
