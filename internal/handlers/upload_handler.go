package handlers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/judemcastillo/social-media-clone/internal/httpx"
	"github.com/judemcastillo/social-media-clone/internal/storage"
)

type UploadHandler struct {
	store *storage.S3Storage
}

func NewUploadHandler(store *storage.S3Storage) *UploadHandler {
	return &UploadHandler{store: store}
}

// UploadChatImage accepts a multipart image, re-encodes it as JPEG and
// stores it under chat/. Returns attachment metadata the client can send
// with a message.
func (h *UploadHandler) UploadChatImage(c *fiber.Ctx) error {
	if h.store == nil {
		return httpx.Error(c, fiber.StatusServiceUnavailable, "uploads_disabled", "Uploads are not configured")
	}
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "No file uploaded")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return httpx.BadRequest(c, "invalid_file", "Could not read file")
	}
	defer file.Close()

	data, width, height, err := storage.ProcessChatImage(file, storage.DefaultChatImageOptions())
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return httpx.BadRequest(c, "file_too_large", "Image exceeds the size limit")
		case errors.Is(err, storage.ErrUnsupported):
			return httpx.BadRequest(c, "unsupported_type", "Only JPEG, PNG and WebP images are accepted")
		default:
			return httpx.BadRequest(c, "invalid_image", "Could not process image")
		}
	}

	key := fmt.Sprintf("chat/%s.jpg", uuid.New().String())
	url, err := h.store.PutObject(c.Context(), key, bytes.NewReader(data), int64(len(data)), "image/jpeg")
	if err != nil {
		return httpx.Internal(c, "upload_failed")
	}

	return c.JSON(fiber.Map{
		"url":    url,
		"type":   "image",
		"width":  width,
		"height": height,
		"size":   len(data),
	})
}
