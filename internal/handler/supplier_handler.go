package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskhub/internal/service"
)

// SupplierHandler handles supplier endpoints.
type SupplierHandler struct {
	svc service.SupplierService
}

// NewSupplierHandler creates a new supplier handler.
func NewSupplierHandler(svc service.SupplierService) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

// CreateSupplierRequest represents a supplier creation request.
type CreateSupplierRequest struct {
	Name          string  `json:"name" validate:"required,max=255"`
	Email         string  `json:"email" validate:"required,email,max=255"`
	Phone         *string `json:"phone" validate:"omitempty,max=50"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contact_person" validate:"omitempty,max=255"`
	TaxID         *string `json:"tax_id" validate:"omitempty,max=100"`
	IsActive      *bool   `json:"is_active"`
}

// UpdateSupplierRequest represents a partial supplier update.
type UpdateSupplierRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=255"`
	Email         *string `json:"email" validate:"omitempty,email,max=255"`
	Phone         *string `json:"phone" validate:"omitempty,max=50"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contact_person" validate:"omitempty,max=255"`
	TaxID         *string `json:"tax_id" validate:"omitempty,max=100"`
	IsActive      *bool   `json:"is_active"`
}

// ListSuppliers godoc
// @Summary List suppliers
// @Tags suppliers
// @Produce json
// @Success 200 {array} model.Supplier
// @Router /suppliers [get]
func (h *SupplierHandler) ListSuppliers(c echo.Context) error {
	suppliers, err := h.svc.List(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, suppliers)
}

// GetSupplier godoc
// @Summary Get supplier
// @Tags suppliers
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} model.Supplier
// @Failure 404 {object} errors.ErrorResponse
// @Router /suppliers/{id} [get]
func (h *SupplierHandler) GetSupplier(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	supplier, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, supplier)
}

// CreateSupplier godoc
// @Summary Create supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Param request body CreateSupplierRequest true "Supplier"
// @Success 201 {object} model.Supplier
// @Failure 422 {object} errors.ErrorResponse
// @Router /suppliers [post]
func (h *SupplierHandler) CreateSupplier(c echo.Context) error {
	var req CreateSupplierRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	supplier, err := h.svc.Create(c.Request().Context(), service.SupplierInput{
		Name:          &req.Name,
		Email:         &req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		TaxID:         req.TaxID,
		IsActive:      req.IsActive,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, supplier)
}

// UpdateSupplier godoc
// @Summary Update supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param request body UpdateSupplierRequest true "Fields to change"
// @Success 200 {object} model.Supplier
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /suppliers/{id} [put]
func (h *SupplierHandler) UpdateSupplier(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateSupplierRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	supplier, err := h.svc.Update(c.Request().Context(), id, service.SupplierInput{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		TaxID:         req.TaxID,
		IsActive:      req.IsActive,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier godoc
// @Summary Delete supplier
// @Tags suppliers
// @Param id path int true "Supplier ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /suppliers/{id} [delete]
func (h *SupplierHandler) DeleteSupplier(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
