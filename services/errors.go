package services

import (
	"errors"
	"log"

	"cafe-pos/clients"
	"cafe-pos/models"
)

// ValidationError is rejected operator input; no network call was made.
type ValidationError = models.ValidationError

var (
	ErrSubmissionInProgress = errors.New("an order is already being submitted")
	ErrUnknownRole          = errors.New("unknown role")
)

const (
	msgTransport    = "Cannot reach the café server. Check the connection and try again."
	msgServerFailed = "The order could not be processed. Please try again."
	msgLoginAgain   = "Your session has expired. Please log in again with /login."
	msgInProgress   = "Your order is still being sent, please wait."
	msgUnknownRole  = "This account has no screen in this app."
)

// UserMessage turns any error from the core into the text shown to the operator.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var vErr ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	if IsAuthError(err) {
		return msgLoginAgain
	}
	if errors.Is(err, ErrSubmissionInProgress) {
		return msgInProgress
	}
	if errors.Is(err, ErrUnknownRole) {
		return msgUnknownRole
	}
	var sErr *clients.ServerError
	if errors.As(err, &sErr) {
		if sErr.Message != "" {
			return sErr.Message
		}
		return msgServerFailed
	}
	if errors.Is(err, clients.ErrTransport) {
		return msgTransport
	}

	log.Printf("unexpected error: %v", err)
	return msgServerFailed
}

// IsAuthError reports whether err means the operator must log in again.
func IsAuthError(err error) bool {
	return errors.Is(err, clients.ErrUnauthenticated)
}
