package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/gofiber/fiber/v2"

	"userapi/internal/service"
	"userapi/internal/validation"
)

var errInvalidBody = errors.New("invalid JSON body")

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: decode, call one service method, map the result.
func RegisterRoutes(app *fiber.App, users service.UserService, uploads service.UploadService, logger *slog.Logger) {
	app.Get("/health", Health())
	app.Get("/healthz", LivenessProbe())
	app.Get("/readyz", ReadinessProbe(users, uploads, logger))

	app.Post("/users", CreateUser(users, logger))
	app.Get("/users", ListUsers(users, logger))
	app.Get("/users/:id", GetUser(users, logger))
	app.Put("/users/:id", UpdateUser(users, logger))
	app.Delete("/users/:id", DeleteUser(users, logger))

	app.Post("/uploads/avatar-url", CreateAvatarUploadURL(uploads, logger))
	app.Get("/generate-presigned-url", GeneratePresignedURL(uploads, logger))
}

// decodeJSON parses the request body with the app's JSON decoder.
// An empty body decodes to the zero value so constraint checks report what is missing.
// A well-formed body with a wrongly typed field is a validation failure on that field.
func decodeJSON(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(body, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return validation.NewError(typeErr.Field, "type",
				fmt.Sprintf("%s must be %s", typeErr.Field, kindName(typeErr.Type)))
		}
		return errInvalidBody
	}
	return nil
}

func kindName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	}
	return "a valid value"
}
