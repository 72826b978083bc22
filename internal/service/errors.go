package service

import "errors"

// Sentinel errors returned by the chat services. Handlers map these to
// structured denials; anything else is treated as an internal failure.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTarget     = errors.New("invalid target")
	ErrNotAPublicRoom    = errors.New("not a public room")
	ErrNotAGroup         = errors.New("not a group conversation")
	ErrNotAMember        = errors.New("not a member")
	ErrCannotRemoveSelf  = errors.New("cannot remove self, use leave")
	ErrCannotRemoveAdmin = errors.New("cannot remove another admin")
	ErrEmptyMessage      = errors.New("message has no content or attachments")
	ErrMessageTooLong    = errors.New("message content too long")
	ErrInvalidAttachment = errors.New("invalid attachment type")
	ErrGuestsForbidden   = errors.New("guests cannot use chat")
)
