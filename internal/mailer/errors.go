package mailer

import "errors"

var (
	// ErrNoRecipient indicates no recipient was configured.
	ErrNoRecipient = errors.New("email must have a recipient")

	// ErrNoSender indicates no sender address was configured.
	ErrNoSender = errors.New("email must have a sender")

	// ErrNoContent indicates the body is empty.
	ErrNoContent = errors.New("email must have text content")

	// ErrSendFailed indicates email sending failed.
	ErrSendFailed = errors.New("failed to send email")
)
