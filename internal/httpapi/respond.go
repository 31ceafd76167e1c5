package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-storefront/service"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type envelope struct {
	Status     string            `json:"status"`
	StatusCode int               `json:"statusCode"`
	Data       any               `json:"data"`
	Message    string            `json:"message"`
	Errors     validation.Errors `json:"errors,omitempty"`
	Metadata   metadata          `json:"metadata"`
}

type metadata struct {
	RequestID       string `json:"requestId"`
	RequestDuration string `json:"requestDuration"`
}

// respond writes the standard envelope. Error statuses never carry data, and a
// deletion answers 200 so the message stays visible.
func respond(w http.ResponseWriter, r *http.Request, statusCode int, data any, message string) {
	writeEnvelope(w, r, statusCode, data, message, nil)
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, statusCode int, data any, message string, fieldErrs validation.Errors) {
	status := statusError
	if statusCode >= 200 && statusCode < 300 {
		status = statusSuccess
	}
	if message == "" {
		message = defaultMessage(statusCode, status)
	}
	if statusCode == http.StatusNoContent {
		statusCode = http.StatusOK
	}
	if status == statusError {
		data = nil
	}

	body := envelope{
		Status:     status,
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Errors:     fieldErrs,
		Metadata: metadata{
			RequestID:       requestIDFromContext(r.Context()),
			RequestDuration: requestDuration(r),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func requestDuration(r *http.Request) string {
	started, ok := startedAtFromContext(r.Context())
	if !ok {
		return "0ms"
	}
	return fmt.Sprintf("%dms", time.Since(started).Round(time.Millisecond).Milliseconds())
}

func defaultMessage(statusCode int, status string) string {
	switch statusCode {
	case http.StatusCreated:
		return "Resource successfully created."
	case http.StatusNoContent:
		return "Resource successfully deleted."
	case http.StatusOK:
		if status == statusSuccess {
			return "Request processed successfully."
		}
		return "Failed to process the request."
	case http.StatusBadRequest:
		return "The request could not be understood or was missing required parameters."
	case http.StatusNotFound:
		return "The requested resource could not be found."
	case http.StatusInternalServerError:
		return "An internal server error occurred. Please try again later."
	default:
		if status == statusSuccess {
			return "Success"
		}
		return "An error occurred."
	}
}

// writeError maps service errors onto the envelope. Unexpected errors are
// logged and answered with a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &fieldErrs):
		writeEnvelope(w, r, http.StatusBadRequest, nil, "", fieldErrs)
	case errors.Is(err, service.ErrValidation):
		respond(w, r, http.StatusBadRequest, nil, err.Error())
	case errors.Is(err, service.ErrNoCart):
		respond(w, r, http.StatusNotFound, nil, "Customer does not have cart")
	case errors.Is(err, service.ErrNotFound):
		respond(w, r, http.StatusNotFound, nil, "")
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", requestIDFromContext(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		respond(w, r, http.StatusInternalServerError, nil, "")
	}
}
