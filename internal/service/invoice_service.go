package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// InvoiceInput carries invoice fields. On update nil fields are left unchanged.
type InvoiceInput struct {
	SupplierID    *uint
	InvoiceNumber *string
	InvoiceDate   *datatypes.Date
	DueDate       *datatypes.Date
	Subtotal      *decimal.Decimal
	TaxAmount     *decimal.Decimal
	TotalAmount   *decimal.Decimal
	Status        *model.InvoiceStatus
	Notes         *string

	// Errors holds field errors already found while decoding the request.
	// They are reported together with the service's own checks.
	Errors *apperrors.ValidationError
}

// InvoiceService manages supplier invoices.
type InvoiceService interface {
	List(ctx context.Context) ([]model.InvoiceListRow, error)
	Get(ctx context.Context, id uint) (*model.Invoice, error)
	Create(ctx context.Context, in InvoiceInput) (*model.Invoice, error)
	Update(ctx context.Context, id uint, in InvoiceInput) (*model.Invoice, error)
	Delete(ctx context.Context, id uint) error
}

type invoiceService struct {
	repo         repository.InvoiceRepository
	supplierRepo repository.SupplierRepository
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(repo repository.InvoiceRepository, supplierRepo repository.SupplierRepository) InvoiceService {
	return &invoiceService{repo: repo, supplierRepo: supplierRepo}
}

func (s *invoiceService) List(ctx context.Context) ([]model.InvoiceListRow, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return rows, nil
}

func (s *invoiceService) Get(ctx context.Context, id uint) (*model.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return invoice, nil
}

func (s *invoiceService) Create(ctx context.Context, in InvoiceInput) (*model.Invoice, error) {
	verr := apperrors.NewValidationError()
	verr.Merge(in.Errors)
	required := map[string]bool{
		"supplier_id":    in.SupplierID == nil,
		"invoice_number": in.InvoiceNumber == nil || *in.InvoiceNumber == "",
		"invoice_date":   in.InvoiceDate == nil,
		"due_date":       in.DueDate == nil,
		"subtotal":       in.Subtotal == nil,
		"total_amount":   in.TotalAmount == nil,
	}
	for field, missing := range required {
		if missing && !verr.Has(field) {
			verr.Add(field, requiredMessage(field))
		}
	}

	invoice := &model.Invoice{
		Status:    model.InvoiceStatusDraft,
		TaxAmount: decimal.Zero,
	}
	applyInvoiceInput(invoice, in)

	if err := s.check(ctx, invoice, in, verr); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, invoice); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.FieldError("invoice_number", "The invoice number has already been taken.")
		}
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return s.Get(ctx, invoice.ID)
}

func (s *invoiceService) Update(ctx context.Context, id uint, in InvoiceInput) (*model.Invoice, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()
	verr.Merge(in.Errors)
	if in.InvoiceNumber != nil && *in.InvoiceNumber == "" {
		verr.Add("invoice_number", requiredMessage("invoice_number"))
	}

	applyInvoiceInput(invoice, in)
	invoice.Supplier = nil

	if err := s.check(ctx, invoice, in, verr); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, invoice); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.FieldError("invoice_number", "The invoice number has already been taken.")
		}
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	return s.Get(ctx, invoice.ID)
}

func (s *invoiceService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// check validates the rules that need storage or the merged invoice: supplier
// existence, number uniqueness, amounts and date ordering. Rule violations are
// added to verr; only storage failures are returned.
func (s *invoiceService) check(ctx context.Context, invoice *model.Invoice, in InvoiceInput, verr *apperrors.ValidationError) error {
	if in.SupplierID != nil {
		if _, err := s.supplierRepo.FindByID(ctx, *in.SupplierID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("find supplier: %w", err)
			}
			verr.Add("supplier_id", "The selected supplier id is invalid.")
		}
	}

	if in.InvoiceNumber != nil && *in.InvoiceNumber != "" {
		existing, err := s.repo.FindByNumber(ctx, *in.InvoiceNumber)
		switch {
		case err == nil && existing.ID != invoice.ID:
			verr.Add("invoice_number", "The invoice number has already been taken.")
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("find invoice by number: %w", err)
		}
	}

	for field, amount := range map[string]*decimal.Decimal{
		"subtotal":     in.Subtotal,
		"tax_amount":   in.TaxAmount,
		"total_amount": in.TotalAmount,
	} {
		if amount != nil && amount.IsNegative() {
			verr.Add(field, fmt.Sprintf("The %s field must be at least 0.", humanize(field)))
		}
	}

	issued, due := time.Time(invoice.InvoiceDate), time.Time(invoice.DueDate)
	if (in.InvoiceDate != nil || in.DueDate != nil) && !issued.IsZero() && !due.IsZero() {
		if due.Before(issued) {
			verr.Add("due_date", "The due date field must be a date after or equal to invoice date.")
		}
	}
	return nil
}

func applyInvoiceInput(invoice *model.Invoice, in InvoiceInput) {
	if in.SupplierID != nil {
		invoice.SupplierID = *in.SupplierID
	}
	if in.InvoiceNumber != nil {
		invoice.InvoiceNumber = *in.InvoiceNumber
	}
	if in.InvoiceDate != nil {
		invoice.InvoiceDate = *in.InvoiceDate
	}
	if in.DueDate != nil {
		invoice.DueDate = *in.DueDate
	}
	if in.Subtotal != nil {
		invoice.Subtotal = *in.Subtotal
	}
	if in.TaxAmount != nil {
		invoice.TaxAmount = *in.TaxAmount
	}
	if in.TotalAmount != nil {
		invoice.TotalAmount = *in.TotalAmount
	}
	if in.Status != nil {
		invoice.Status = *in.Status
	}
	if in.Notes != nil {
		invoice.Notes = in.Notes
	}
}
