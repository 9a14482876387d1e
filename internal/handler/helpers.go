package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"taskhub/internal/auth"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/middleware"
)

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// fail renders a domain error as an echo.HTTPError carrying ErrorResponse.
func fail(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

// bindAndValidate decodes the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return fail(apperrors.ErrInvalidBody)
	}
	if err := c.Validate(req); err != nil {
		return fail(err)
	}
	return nil
}

// bindAndCollect decodes the request body into req and returns its validation
// failures instead of responding, so callers can report them together with
// later checks.
func bindAndCollect(c echo.Context, req interface{}) (*apperrors.ValidationError, error) {
	if err := c.Bind(req); err != nil {
		return nil, fail(apperrors.ErrInvalidBody)
	}
	verr := apperrors.NewValidationError()
	if err := c.Validate(req); err != nil {
		var fieldErrs *apperrors.ValidationError
		if !errors.As(err, &fieldErrs) {
			return nil, fail(err)
		}
		verr.Merge(fieldErrs)
	}
	return verr, nil
}

// pathID parses the :id route parameter. Anything that is not a positive
// integer cannot name a record, so it is reported as not found.
func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fail(apperrors.ErrNotFound)
	}
	return uint(id), nil
}

func callerOf(c echo.Context) (auth.Identity, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return auth.Identity{}, fail(apperrors.ErrUnauthenticated)
	}
	return caller, nil
}
