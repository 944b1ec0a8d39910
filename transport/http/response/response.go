package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/shared/logger"

	"github.com/rs/zerolog/log"
)

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type Error struct {
	Error *string `json:"error,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Message{Message: &message})
}

// WithJSON sends a response containing a JSON object
func WithJSON(writer http.ResponseWriter, code int, jsonPayload any) {
	response(writer, code, Data[any]{Data: &jsonPayload})
}

// WithError sends a response with an error message
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)
	errMsg := err.Error()

	response(writer, code, Error{Error: &errMsg})
}

// WithFailure logs err against the action that failed and writes it. Client errors
// are logged as warnings, everything else as errors.
func WithFailure(writer http.ResponseWriter, err error, action string) {
	code := failure.GetCode(err)

	event := log.Warn()
	if code >= http.StatusInternalServerError {
		event = log.Error()
	}

	event.Err(err).Int("status", code).Msg("failed to " + action)

	WithError(writer, err)
}

// WithRaw writes body unchanged with the given status and content type
func WithRaw(writer http.ResponseWriter, code int, contentType string, body []byte) {
	if contentType != constant.Empty {
		writer.Header().Set(constant.RequestHeaderContentType, contentType)
	}

	writer.WriteHeader(code)

	if _, err := writer.Write(body); err != nil {
		logger.ErrorWithStack(err)
	}
}

// WithAttachment sends body as a downloadable file
func WithAttachment(writer http.ResponseWriter, contentType, fileName string, body []byte) {
	writer.Header().Set(constant.ResponseHeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	WithRaw(writer, http.StatusOK, contentType, body)
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func response(writer http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	WithRaw(writer, code, constant.ContentTypeJSON, response)
}
