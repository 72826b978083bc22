package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/judemcastillo/social-media-clone/internal/httpx"
	"github.com/judemcastillo/social-media-clone/internal/service"
)

// respondServiceError maps service sentinels onto structured HTTP denials.
// Anything unrecognized is an internal failure.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return httpx.NotFound(c, "not_found", "Not found")
	case errors.Is(err, service.ErrForbidden):
		return httpx.Forbidden(c, "forbidden", "Forbidden")
	case errors.Is(err, service.ErrGuestsForbidden):
		return httpx.Forbidden(c, "guests_forbidden", "Guests cannot use chat")
	case errors.Is(err, service.ErrInvalidTarget):
		return httpx.BadRequest(c, "invalid_target", "Invalid target user")
	case errors.Is(err, service.ErrNotAPublicRoom):
		return httpx.BadRequest(c, "not_a_public_room", "Not a public room")
	case errors.Is(err, service.ErrNotAGroup):
		return httpx.BadRequest(c, "not_a_group", "Not a group conversation")
	case errors.Is(err, service.ErrNotAMember):
		return httpx.BadRequest(c, "not_a_member", "Not a member")
	case errors.Is(err, service.ErrCannotRemoveSelf):
		return httpx.BadRequest(c, "cannot_remove_self", "Use leave instead")
	case errors.Is(err, service.ErrCannotRemoveAdmin):
		return httpx.BadRequest(c, "cannot_remove_admin", "Cannot remove another admin")
	case errors.Is(err, service.ErrEmptyMessage):
		return httpx.BadRequest(c, "empty_message", "Message has no content or attachments")
	case errors.Is(err, service.ErrMessageTooLong):
		return httpx.BadRequest(c, "message_too_long", "Message content exceeds the limit")
	case errors.Is(err, service.ErrInvalidAttachment):
		return httpx.BadRequest(c, "invalid_attachment", "Unsupported attachment type")
	default:
		return httpx.Internal(c, "internal_error")
	}
}
