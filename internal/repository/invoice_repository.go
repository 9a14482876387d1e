package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"taskhub/internal/db"
	"taskhub/internal/metrics"
	"taskhub/internal/model"
)

// InvoiceRepository defines invoice persistence operations.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id uint) (*model.Invoice, error)
	FindByNumber(ctx context.Context, number string) (*model.Invoice, error)
	// List returns the flat invoice-with-supplier rows, newest invoice date first.
	List(ctx context.Context) ([]model.InvoiceListRow, error)
	Update(ctx context.Context, invoice *model.Invoice) error
	Delete(ctx context.Context, id uint) error
}

// InvoiceListOptions selects the fast path for invoice listings. When
// UseProcedure is set and Statement is non-empty, List runs Statement first
// and falls back to the ORM join if it fails.
type InvoiceListOptions struct {
	UseProcedure bool
	Statement    string
}

// InvoiceListOptionsFor builds the listing options for a database driver.
func InvoiceListOptionsFor(driver db.Driver, useProcedure bool) InvoiceListOptions {
	stmt, ok := db.InvoiceListStatement(driver)
	return InvoiceListOptions{UseProcedure: useProcedure && ok, Statement: stmt}
}

type invoiceRepository struct {
	db   *gorm.DB
	opts InvoiceListOptions
}

// NewInvoiceRepository creates a new invoice repository.
func NewInvoiceRepository(conn *gorm.DB, opts InvoiceListOptions) InvoiceRepository {
	return &invoiceRepository{db: conn, opts: opts}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return r.db.WithContext(ctx).Omit("Supplier").Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := r.db.WithContext(ctx).Preload("Supplier").First(&invoice, id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByNumber(ctx context.Context, number string) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := r.db.WithContext(ctx).Where("invoice_number = ?", number).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context) ([]model.InvoiceListRow, error) {
	if r.opts.UseProcedure && r.opts.Statement != "" {
		rows := make([]model.InvoiceListRow, 0)
		err := r.db.WithContext(ctx).Raw(r.opts.Statement).Scan(&rows).Error
		if err == nil {
			metrics.ObserveInvoiceListing(metrics.StrategyProcedure)
			return rows, nil
		}
		slog.Warn("invoice listing procedure failed, falling back to query", "statement", r.opts.Statement, "error", err)
		metrics.ObserveInvoiceListing(metrics.StrategyFallback)
	} else {
		metrics.ObserveInvoiceListing(metrics.StrategyQuery)
	}

	return r.listQuery(ctx)
}

func (r *invoiceRepository) listQuery(ctx context.Context) ([]model.InvoiceListRow, error) {
	rows := make([]model.InvoiceListRow, 0)
	err := r.db.WithContext(ctx).
		Table("invoices AS i").
		Select(db.InvoiceListColumns).
		Joins("INNER JOIN suppliers s ON i.supplier_id = s.id").
		Order(db.InvoiceListOrder).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return r.db.WithContext(ctx).Omit("Supplier").Save(invoice).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Invoice{}, id).Error
}
