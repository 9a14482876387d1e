package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "taskhub/internal/errors"
	"taskhub/internal/service"
)

// UploadHandler handles file upload endpoints.
type UploadHandler struct {
	svc service.UploadService
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(svc service.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// ListUploads godoc
// @Summary List uploads
// @Tags uploads
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Upload
// @Failure 401 {object} errors.ErrorResponse
// @Router /uploads [get]
func (h *UploadHandler) ListUploads(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	uploads, err := h.svc.List(c.Request().Context(), caller)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, uploads)
}

// GetUpload godoc
// @Summary Get upload
// @Tags uploads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Upload ID"
// @Success 200 {object} model.Upload
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /uploads/{id} [get]
func (h *UploadHandler) GetUpload(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	upload, err := h.svc.Get(c.Request().Context(), caller, id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, upload)
}

// CreateUpload godoc
// @Summary Upload a PDF or image
// @Description Stores the file and extracts its text. Extraction failures leave extracted_text null.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "PDF, JPG, JPEG or PNG, at most 5 MiB"
// @Success 201 {object} model.Upload
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /uploads [post]
func (h *UploadHandler) CreateUpload(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("file")
	if err != nil {
		// A body without Content-Length only trips the size limit while parsing.
		if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			return fail(service.UploadTooLarge())
		}
		return fail(apperrors.FieldError("file", "The file field is required."))
	}
	file, err := header.Open()
	if err != nil {
		return fail(fmt.Errorf("open uploaded file: %w", err))
	}
	defer file.Close()

	upload, err := h.svc.Create(c.Request().Context(), caller, service.UploadInput{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, upload)
}

// DeleteUpload godoc
// @Summary Delete upload
// @Tags uploads
// @Security BearerAuth
// @Param id path int true "Upload ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /uploads/{id} [delete]
func (h *UploadHandler) DeleteUpload(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), caller, id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
