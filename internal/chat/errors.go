package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind classifies the outcome of a dispatch.
type Kind string

const (
	KindOK         Kind = "ok"
	KindValidation Kind = "validation"
	KindAPI        Kind = "api"
	KindNetwork    Kind = "network"
	KindTimeout    Kind = "timeout"
	KindParse      Kind = "parse"
	KindUnknown    Kind = "unknown"
)

// Messages surfaced to callers in Result.Error.
const (
	MsgEmptyMessage   = "Message cannot be empty."
	MsgNotConfigured  = "Chat service is not configured. Please set the endpoint URL in appsettings.json."
	MsgUnknownShape   = "Unable to parse response from AI endpoint."
	MsgNetwork        = "Network error: Unable to connect to the AI service."
	MsgTimeout        = "Request timed out. Please try again."
	MsgParse          = "Error parsing response from AI service."
	MsgUnexpected     = "An unexpected error occurred. Please try again."
	apiFailedTemplate = "API call failed: %d"
)

var (
	errEmptyMessage  = errors.New("empty message")
	errNotConfigured = errors.New("endpoint url not configured")
	errUnknownShape  = errors.New("response has neither choices[0].message.content nor output")
)

// Error is a classified dispatch failure. Message is safe to show to users;
// Cause is kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// newError builds an Error carrying the standard caller-facing message for kind.
func newError(kind Kind, cause error) *Error {
	var msg string
	switch kind {
	case KindNetwork:
		msg = MsgNetwork
	case KindTimeout:
		msg = MsgTimeout
	case KindParse:
		msg = MsgParse
	default:
		kind = KindUnknown
		msg = MsgUnexpected
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func apiError(status int, body string) *Error {
	return &Error{
		Kind:    KindAPI,
		Message: fmt.Sprintf(apiFailedTemplate, status),
		Cause:   fmt.Errorf("endpoint returned status %d: %s", status, body),
	}
}

// classifyTransport maps an error from the HTTP round trip to a Kind.
// Deadline and cancellation count as timeouts; anything the transport
// wraps in *url.Error or a net error is a network failure.
func classifyTransport(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindNetwork
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindNetwork
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindNetwork
	}
	return KindUnknown
}

// logMessage is the operator-facing log line for each failure kind.
func logMessage(kind Kind) string {
	switch kind {
	case KindAPI:
		return "API call failed"
	case KindNetwork:
		return "Network error while calling chat endpoint"
	case KindTimeout:
		return "Request to chat endpoint timed out"
	case KindParse:
		return "Error parsing response from chat endpoint"
	default:
		return "Unexpected error while calling chat endpoint"
	}
}
