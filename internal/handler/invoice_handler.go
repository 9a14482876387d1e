package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/service"
)

const dateLayout = "2006-01-02"

// InvoiceHandler handles invoice endpoints.
type InvoiceHandler struct {
	svc service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(svc service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// CreateInvoiceRequest represents an invoice creation request. Amounts accept
// JSON numbers or numeric strings.
type CreateInvoiceRequest struct {
	SupplierID    *uint            `json:"supplier_id" validate:"required"`
	InvoiceNumber string           `json:"invoice_number" validate:"required,max=100"`
	InvoiceDate   string           `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	DueDate       string           `json:"due_date" validate:"required,datetime=2006-01-02"`
	Subtotal      *decimal.Decimal `json:"subtotal" swaggertype:"number"`
	TaxAmount     *decimal.Decimal `json:"tax_amount" swaggertype:"number"`
	TotalAmount   *decimal.Decimal `json:"total_amount" swaggertype:"number"`
	Status        string           `json:"status" validate:"omitempty,oneof=draft sent paid overdue cancelled"`
	Notes         *string          `json:"notes"`
}

// UpdateInvoiceRequest represents a partial invoice update.
type UpdateInvoiceRequest struct {
	SupplierID    *uint            `json:"supplier_id"`
	InvoiceNumber *string          `json:"invoice_number" validate:"omitempty,max=100"`
	InvoiceDate   *string          `json:"invoice_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate       *string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Subtotal      *decimal.Decimal `json:"subtotal" swaggertype:"number"`
	TaxAmount     *decimal.Decimal `json:"tax_amount" swaggertype:"number"`
	TotalAmount   *decimal.Decimal `json:"total_amount" swaggertype:"number"`
	Status        *string          `json:"status" validate:"omitempty,oneof=draft sent paid overdue cancelled"`
	Notes         *string          `json:"notes"`
}

// ListInvoices godoc
// @Summary List invoices with their suppliers
// @Description Flat rows of invoice columns plus supplier_* columns, newest invoice date first.
// @Tags invoices
// @Produce json
// @Success 200 {array} model.InvoiceListRow
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c echo.Context) error {
	rows, err := h.svc.List(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, rows)
}

// GetInvoice godoc
// @Summary Get invoice
// @Tags invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} model.Invoice
// @Failure 404 {object} errors.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	invoice, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// CreateInvoice godoc
// @Summary Create invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body CreateInvoiceRequest true "Invoice"
// @Success 201 {object} model.Invoice
// @Failure 422 {object} errors.ErrorResponse
// @Router /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c echo.Context) error {
	var req CreateInvoiceRequest
	verr, err := bindAndCollect(c, &req)
	if err != nil {
		return err
	}

	in := service.InvoiceInput{
		SupplierID:    req.SupplierID,
		InvoiceNumber: &req.InvoiceNumber,
		Subtotal:      req.Subtotal,
		TaxAmount:     req.TaxAmount,
		TotalAmount:   req.TotalAmount,
		Notes:         req.Notes,
	}
	if req.Status != "" {
		status := model.InvoiceStatus(req.Status)
		in.Status = &status
	}
	parseDates(&in, verr, &req.InvoiceDate, &req.DueDate)
	in.Errors = verr

	invoice, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, invoice)
}

// UpdateInvoice godoc
// @Summary Update invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param request body UpdateInvoiceRequest true "Fields to change"
// @Success 200 {object} model.Invoice
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateInvoiceRequest
	verr, err := bindAndCollect(c, &req)
	if err != nil {
		return err
	}

	in := service.InvoiceInput{
		SupplierID:    req.SupplierID,
		InvoiceNumber: req.InvoiceNumber,
		Subtotal:      req.Subtotal,
		TaxAmount:     req.TaxAmount,
		TotalAmount:   req.TotalAmount,
		Notes:         req.Notes,
	}
	if req.Status != nil {
		status := model.InvoiceStatus(*req.Status)
		in.Status = &status
	}
	parseDates(&in, verr, req.InvoiceDate, req.DueDate)
	in.Errors = verr

	invoice, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice godoc
// @Summary Delete invoice
// @Tags invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Invoice deleted successfully"})
}

// parseDates sets the dates that parse and records a format error for the rest.
func parseDates(in *service.InvoiceInput, verr *apperrors.ValidationError, invoiceDate, dueDate *string) {
	for field, raw := range map[string]*string{"invoice_date": invoiceDate, "due_date": dueDate} {
		if raw == nil || *raw == "" {
			continue
		}
		t, err := time.Parse(dateLayout, *raw)
		if err != nil {
			verr.Add(field, "The "+strings.ReplaceAll(field, "_", " ")+" field must match the format Y-m-d.")
			continue
		}
		d := datatypes.Date(t)
		if field == "invoice_date" {
			in.InvoiceDate = &d
		} else {
			in.DueDate = &d
		}
	}
}
