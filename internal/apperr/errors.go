// Package apperr defines the error taxonomy shared across the donation engine.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrSignatureMismatch    = errors.New("payment signature mismatch")
	ErrDuplicateExternalID  = errors.New("duplicate external payment id")
	ErrGatewayNotConfigured = errors.New("payment gateway credentials not configured")
	ErrGatewayUnsupported   = errors.New("operation not supported by this gateway")
)

// ValidationError marks bad caller input. Handlers map it to 400.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func Validation(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// GatewayAPIError wraps an upstream provider failure. Retryable by the caller.
type GatewayAPIError struct {
	Gateway    string
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayAPIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: upstream status %d", e.Gateway, e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Gateway, e.Op, e.Err)
}

func (e *GatewayAPIError) Unwrap() error { return e.Err }

// ReceiptRenderError is non-fatal to the payment write path.
type ReceiptRenderError struct {
	Reason string
}

func (e *ReceiptRenderError) Error() string {
	return "receipt render failed: " + e.Reason
}

// NotificationDeliveryError is non-fatal to the payment write path.
type NotificationDeliveryError struct {
	Recipient string
	Err       error
}

func (e *NotificationDeliveryError) Error() string {
	return fmt.Sprintf("receipt delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e *NotificationDeliveryError) Unwrap() error { return e.Err }
