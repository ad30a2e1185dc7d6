package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"userapi/internal/http/middleware"
	"userapi/internal/service"
)

const readinessTimeout = 2 * time.Second

type healthResponse struct {
	OK bool `json:"ok"`
}

type readinessResponse struct {
	Status string `json:"status"`
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} healthResponse
// @Router /health [get]
func Health() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(healthResponse{OK: true})
	}
}

// LivenessProbe answers without touching any collaborator.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ReadinessProbe godoc
// @Summary Readiness check (document store and bucket)
// @Tags health
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} errorPayload
// @Router /readyz [get]
func ReadinessProbe(users service.UserService, uploads service.UploadService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
		defer cancel()

		checks := []struct {
			name  string
			check func(context.Context) error
		}{
			{"store", users.Ready},
			{"bucket", uploads.Ready},
		}
		for _, ch := range checks {
			if err := ch.check(ctx); err != nil {
				logger.WarnContext(ctx, "readiness_failed",
					slog.String("request_id", middleware.GetRequestID(c)),
					slog.String("dependency", ch.name),
					slog.String("error", err.Error()),
				)
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.JSON(readinessResponse{Status: "ready"})
	}
}
