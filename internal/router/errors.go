package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "taskhub/internal/errors"
)

// errorHandler renders every error as {"message", "errors"?} JSON and logs
// server-side failures.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		mapped := apperrors.MapErrorToHTTP(err)
		he = echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse()).SetInternal(err)
	}

	var body apperrors.ErrorResponse
	switch msg := he.Message.(type) {
	case apperrors.ErrorResponse:
		body = msg
	case string:
		body = apperrors.ErrorResponse{Message: msg}
	default:
		body = apperrors.ErrorResponse{Message: http.StatusText(he.Code)}
	}

	if he.Code >= http.StatusInternalServerError {
		cause := err
		if he.Internal != nil {
			cause = he.Internal
		}
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", he.Code,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", cause,
		)
		body = apperrors.ErrorResponse{Message: "Server Error"}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, body)
	}
	if err != nil {
		slog.Error("write error response", "error", err)
	}
}
