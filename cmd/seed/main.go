package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"taskhub/internal/config"
	"taskhub/internal/db"
	"taskhub/internal/logging"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// seedInvoice references its supplier by name so the fixture is independent of ids.
type seedInvoice struct {
	Supplier string
	Number   string
	Date     string
	Due      string
	Subtotal string
	Tax      string
	Total    string
	Status   model.InvoiceStatus
	Notes    string
}

var suppliers = []model.Supplier{
	{Name: "Tech Solutions Inc.", Email: "contact@techsolutions.com", Phone: "+1-555-0123", Address: "123 Technology Drive, Silicon Valley, CA 94000", ContactPerson: "John Smith", TaxID: "TS-123456789", IsActive: true},
	{Name: "Office Supplies Co.", Email: "orders@officesupplies.com", Phone: "+1-555-0456", Address: "456 Business Ave, New York, NY 10001", ContactPerson: "Sarah Johnson", TaxID: "OS-987654321", IsActive: true},
	{Name: "Marketing Partners LLC", Email: "info@marketingpartners.com", Phone: "+1-555-0789", Address: "789 Creative Blvd, Los Angeles, CA 90210", ContactPerson: "Mike Davis", TaxID: "MP-456789123", IsActive: true},
	{Name: "Consulting Services Ltd.", Email: "admin@consultingservices.com", Phone: "+1-555-0321", Address: "321 Professional Plaza, Chicago, IL 60601", ContactPerson: "Emily Brown", TaxID: "CS-789123456", IsActive: true},
	{Name: "Inactive Supplier Corp.", Email: "old@inactivesupplier.com", Phone: "+1-555-0999", Address: "999 Old Street, Detroit, MI 48201", ContactPerson: "Robert Wilson", TaxID: "IS-111222333", IsActive: false},
}

var invoices = []seedInvoice{
	{"Tech Solutions Inc.", "INV-2024-001", "2024-01-15", "2024-02-15", "5000.00", "500.00", "5500.00", model.InvoiceStatusPaid, "Software licensing and support services"},
	{"Office Supplies Co.", "INV-2024-002", "2024-01-20", "2024-02-20", "1200.00", "120.00", "1320.00", model.InvoiceStatusSent, "Office equipment and supplies"},
	{"Marketing Partners LLC", "INV-2024-003", "2024-02-01", "2024-03-01", "8000.00", "800.00", "8800.00", model.InvoiceStatusDraft, "Digital marketing campaign services"},
	{"Consulting Services Ltd.", "INV-2024-004", "2024-02-10", "2024-03-10", "3500.00", "350.00", "3850.00", model.InvoiceStatusOverdue, "Business process consulting"},
	{"Tech Solutions Inc.", "INV-2024-005", "2024-02-15", "2024-03-15", "2500.00", "250.00", "2750.00", model.InvoiceStatusSent, "Hardware maintenance contract"},
	{"Office Supplies Co.", "INV-2024-006", "2024-02-20", "2024-03-20", "800.00", "80.00", "880.00", model.InvoiceStatusPaid, "Monthly office supplies delivery"},
}

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	slog.Info("starting seed")

	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		fatal("database config", err)
	}
	gormDB, err := db.Open(driver, cfg.DBDSN)
	if err != nil {
		fatal("failed to connect to database", err)
	}

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		fatal("failed to run migrations", err)
	}

	ctx := context.Background()
	supplierRepo := repository.NewSupplierRepository(gormDB)
	invoiceRepo := repository.NewInvoiceRepository(gormDB, repository.InvoiceListOptions{})

	ids, created, err := seedSuppliers(ctx, supplierRepo, suppliers)
	if err != nil {
		fatal("failed to seed suppliers", err)
	}
	slog.Info("suppliers seeded", "created", created, "total", len(ids))

	created, err = seedInvoices(ctx, invoiceRepo, ids, invoices)
	if err != nil {
		fatal("failed to seed invoices", err)
	}
	slog.Info("invoices seeded", "created", created, "total", len(invoices))
}

// seedSuppliers creates missing suppliers and returns the id of every fixture by name.
func seedSuppliers(ctx context.Context, repo repository.SupplierRepository, fixtures []model.Supplier) (map[string]uint, int, error) {
	ids := make(map[string]uint, len(fixtures))
	created := 0
	for _, fixture := range fixtures {
		existing, err := repo.FindByName(ctx, fixture.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, created, fmt.Errorf("check supplier %q: %w", fixture.Name, err)
		}
		if existing != nil {
			ids[fixture.Name] = existing.ID
			continue
		}

		supplier := fixture
		if err := repo.Create(ctx, &supplier); err != nil {
			return nil, created, fmt.Errorf("create supplier %q: %w", fixture.Name, err)
		}
		ids[fixture.Name] = supplier.ID
		created++
	}
	return ids, created, nil
}

// seedInvoices creates invoices whose numbers are not taken yet.
func seedInvoices(ctx context.Context, repo repository.InvoiceRepository, supplierIDs map[string]uint, fixtures []seedInvoice) (int, error) {
	created := 0
	for _, fixture := range fixtures {
		existing, err := repo.FindByNumber(ctx, fixture.Number)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("check invoice %s: %w", fixture.Number, err)
		}
		if existing != nil {
			continue
		}

		supplierID, ok := supplierIDs[fixture.Supplier]
		if !ok {
			return created, fmt.Errorf("invoice %s: unknown supplier %q", fixture.Number, fixture.Supplier)
		}
		invoice, err := fixture.toModel(supplierID)
		if err != nil {
			return created, err
		}
		if err := repo.Create(ctx, invoice); err != nil {
			return created, fmt.Errorf("create invoice %s: %w", fixture.Number, err)
		}
		created++
	}
	return created, nil
}

func (s seedInvoice) toModel(supplierID uint) (*model.Invoice, error) {
	date, err := time.Parse(time.DateOnly, s.Date)
	if err != nil {
		return nil, fmt.Errorf("invoice %s date: %w", s.Number, err)
	}
	due, err := time.Parse(time.DateOnly, s.Due)
	if err != nil {
		return nil, fmt.Errorf("invoice %s due date: %w", s.Number, err)
	}
	notes := s.Notes
	return &model.Invoice{
		SupplierID:    supplierID,
		InvoiceNumber: s.Number,
		InvoiceDate:   datatypes.Date(date),
		DueDate:       datatypes.Date(due),
		Subtotal:      decimal.RequireFromString(s.Subtotal),
		TaxAmount:     decimal.RequireFromString(s.Tax),
		TotalAmount:   decimal.RequireFromString(s.Total),
		Status:        s.Status,
		Notes:         &notes,
	}, nil
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
