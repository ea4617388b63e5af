package entity

import "errors"

// Domain errors
var (
	// Webhook errors
	ErrInvalidSignature = errors.New("webhook signature mismatch")
	ErrMalformedBody    = errors.New("webhook body is not valid JSON")

	// Pipeline errors
	ErrEmptyAnswer = errors.New("pipeline returned an empty answer")

	// Conversation errors
	ErrConversationNotFound = errors.New("conversation not found")

	// Export errors
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
