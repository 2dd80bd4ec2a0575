package heritage

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// APIError is the JSON error envelope every endpoint shares.
type APIError struct {
	Message  string         `json:"message"`
	TextCode string         `json:"text_code,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
}

type apiErrorResponse struct {
	Error APIError `json:"error"`
}

// NewErrorHandler maps rich errors onto HTTP responses. Auth failures
// all surface as the same 401 with a WWW-Authenticate challenge, and
// internal errors never leak their message to the client.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(apiErrorResponse{
				Error: APIError{Message: fiberErr.Message},
			})
		}

		if repository.IsRecordNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(apiErrorResponse{
				Error: APIError{Message: "not found"},
			})
		}

		var richErr *goerrors.Error
		if !goerrors.As(err, &richErr) {
			logger.Error("unhandled error", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(apiErrorResponse{
				Error: APIError{Message: "internal server error"},
			})
		}

		status := statusForError(richErr)

		if status == fiber.StatusUnauthorized {
			c.Set(fiber.HeaderWWWAuthenticate, bearerScheme)
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", "path", c.Path(), "error", richErr)
			return c.Status(status).JSON(apiErrorResponse{
				Error: APIError{Message: "internal server error"},
			})
		}

		body := APIError{
			Message:  richErr.Message,
			TextCode: richErr.TextCode,
		}

		if richErr.Category == goerrors.CategoryValidation && len(richErr.Metadata) > 0 {
			body.Fields = richErr.Metadata
		}

		return c.Status(status).JSON(apiErrorResponse{Error: body})
	}
}

func statusForError(richErr *goerrors.Error) int {
	switch richErr.Category {
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	}

	if richErr.Code >= fiber.StatusBadRequest && richErr.Code < 600 {
		return richErr.Code
	}

	return fiber.StatusInternalServerError
}

// ValidationError wraps an ozzo validation failure into the shared
// envelope, keying field messages under Fields.
func ValidationError(err error) error {
	richErr := goerrors.New("invalid request payload", goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest)

	if err == nil {
		return richErr
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]any, len(verrs))
		for field, ferr := range verrs {
			fields[field] = ferr.Error()
		}
		return richErr.WithMetadata(fields)
	}

	return richErr.WithMetadata(map[string]any{"detail": err.Error()})
}
