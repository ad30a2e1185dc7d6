package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"userapi/internal/model"
	"userapi/internal/service"
)

type avatarUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	S3URL     string    `json:"s3Url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// presignedURLResponse keeps the field names existing clients of
// /generate-presigned-url read.
type presignedURLResponse struct {
	UploadURL string    `json:"uploadUrl"`
	FileURL   string    `json:"fileUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateAvatarUploadURL godoc
// @Summary Issue a presigned PUT URL for a caller-chosen key
// @Description The client must send the same Content-Type when uploading.
// @Tags uploads
// @Accept json
// @Produce json
// @Param request body model.UploadGrantRequest true "Key and content type"
// @Success 200 {object} avatarUploadResponse
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /uploads/avatar-url [post]
func CreateAvatarUploadURL(svc service.UploadService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.UploadGrantRequest
		if err := decodeJSON(c, &req); err != nil {
			return respondError(c, logger, err)
		}
		g, err := svc.Grant(c.UserContext(), req)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(avatarUploadResponse{
			UploadURL: g.UploadURL,
			S3URL:     g.ObjectURL,
			Key:       g.Key,
			ExpiresAt: g.ExpiresAt,
		})
	}
}

// GeneratePresignedURL godoc
// @Summary Issue a presigned PUT URL under a generated key
// @Description The key is "<prefix><unix-millis>_<filename>".
// @Tags uploads
// @Produce json
// @Param filename query string true "Original file name"
// @Param filetype query string true "Content type"
// @Success 200 {object} presignedURLResponse
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /generate-presigned-url [get]
func GeneratePresignedURL(svc service.UploadService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.UploadFileRequest
		if err := c.QueryParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid query parameters")
		}
		g, err := svc.GrantForFile(c.UserContext(), req)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(presignedURLResponse{
			UploadURL: g.UploadURL,
			FileURL:   g.ObjectURL,
			Key:       g.Key,
			ExpiresAt: g.ExpiresAt,
		})
	}
}
