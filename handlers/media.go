// handlers/media.go - Media upload and download URLs
package handlers

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"musicquiz/api"
	"musicquiz/storage"
)

var contentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type uploadRequest struct {
	AudioData string `json:"audioData"`
	ImageData string `json:"imageData"`
	FileName  string `json:"fileName" validate:"required"`
	SessionID string `json:"sessionId" validate:"required"`
}

func (h *Handler) UploadAudio(c *fiber.Ctx) error {
	return h.uploadMedia(c, "audio")
}

func (h *Handler) UploadImage(c *fiber.Ctx) error {
	return h.uploadMedia(c, "image")
}

func (h *Handler) uploadMedia(c *fiber.Ctx, kind string) error {
	var req uploadRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	encoded := req.AudioData
	if kind == "image" {
		encoded = req.ImageData
	}
	if encoded == "" {
		return api.Error(c, fiber.StatusBadRequest, api.CodeMissingFields, kind+"Data is required")
	}
	// Tolerate data-URL prefixes from browser uploads.
	if idx := strings.Index(encoded, ","); idx != -1 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return api.Error(c, fiber.StatusBadRequest, api.CodeInvalidFile, "File data is not valid base64")
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	contentType, ok := contentTypes[ext]
	if !ok {
		return api.Error(c, fiber.StatusBadRequest, api.CodeInvalidFile, "Unsupported file extension")
	}

	key := fmt.Sprintf("sessions/%s/%s/%s%s", req.SessionID, kind, uuid.NewString(), ext)
	if err := h.Media.Put(c.Context(), key, data, contentType); err != nil {
		return err
	}
	url, err := h.Media.PresignGet(c.Context(), key, storage.PresignTTL)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"key": key, "url": url})
}

// GetMediaURL hands out a short-lived download URL for a stored object.
func (h *Handler) GetMediaURL(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		return api.Error(c, fiber.StatusBadRequest, api.CodeMissingFields, "key query parameter is required")
	}
	url, err := h.Media.PresignGet(c.Context(), key, storage.PresignTTL)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"url": url})
}
