package models

import "errors"

var (
	ErrInvalidTransition  = errors.New("invalid_transition")
	ErrInvitationUnusable = errors.New("invalid or expired invitation code")
)
