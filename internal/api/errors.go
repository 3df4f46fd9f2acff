package api

import (
	"errors"
	"fmt"
)

var ErrCutoffsNotFound = errors.New("no cutoffs for platform")

// TransportError is a request that never produced a response: dial, write, read or timeout.
type TransportError struct {
	URL     string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request to %s timed out: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError is a response the service marked as failed, by status code or by an
// errors list inside a 200 body.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error (status %d): %s", e.StatusCode, e.Message)
}

// PayloadError is a 200 response whose body does not have the expected shape.
type PayloadError struct {
	Message string
	Err     error
}

func (e *PayloadError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// Classify names the failure class of err for logs and metrics.
func Classify(err error) string {
	var transport *TransportError
	var service *ServiceError
	var payload *PayloadError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &transport) && transport.Timeout:
		return "timeout"
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &service):
		return "service"
	case errors.As(err, &payload):
		return "payload"
	}
	return "unknown"
}
