package lfs

import (
	"errors"
	"net/http"
)

var (
	// ErrEmptyBody is a request with no body or only whitespace.
	ErrEmptyBody = errors.New("request body is empty")
	// ErrBodyTooLarge is a request body over the configured limit.
	ErrBodyTooLarge = errors.New("request body is too large")
	// ErrMalformedJSON covers unreadable bodies, invalid JSON and schema violations.
	ErrMalformedJSON = errors.New("malformed batch request")
	// ErrUnsupportedOperation is verify or any operation the protocol does not define.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrSigningFailure is any issuer error while building a response.
	ErrSigningFailure = errors.New("could not issue signed url")
	// ErrTimeout is a batch that ran past its request deadline.
	ErrTimeout = errors.New("batch request timed out")
)

// ErrorKind names the rejection class of err for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrEmptyBody):
		return "EmptyBody"
	case errors.Is(err, ErrBodyTooLarge):
		return "BodyTooLarge"
	case errors.Is(err, ErrMalformedJSON):
		return "MalformedJSON"
	case errors.Is(err, ErrUnsupportedOperation):
		return "UnsupportedOperation"
	case errors.Is(err, ErrSigningFailure):
		return "SigningFailure"
	case errors.Is(err, ErrTimeout):
		return "Timeout"
	}

	return "Internal"
}

// StatusCode maps err to the HTTP status of the batch error response.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrEmptyBody):
		return http.StatusBadRequest
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrMalformedJSON):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnsupportedOperation):
		return http.StatusNotImplemented
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	}

	return http.StatusInternalServerError
}

// Message is what the client sees. Server side failures are not described
// beyond their class so credential details never reach the response.
func Message(err error) string {
	switch ErrorKind(err) {
	case "SigningFailure":
		return ErrSigningFailure.Error()
	case "Timeout":
		return ErrTimeout.Error()
	case "Internal":
		return "internal server error"
	}

	return err.Error()
}
