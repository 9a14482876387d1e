package db

import (
	"fmt"

	"gorm.io/gorm"
)

// InvoiceListColumns is the flat invoice-with-supplier projection shared by
// the stored routine and the ORM fallback.
const InvoiceListColumns = `i.id,
	i.invoice_number,
	i.invoice_date,
	i.due_date,
	i.subtotal,
	i.tax_amount,
	i.total_amount,
	i.status,
	i.notes,
	i.created_at,
	i.updated_at,
	s.id AS supplier_id,
	s.name AS supplier_name,
	s.email AS supplier_email,
	s.phone AS supplier_phone,
	s.address AS supplier_address,
	s.contact_person AS supplier_contact_person,
	s.tax_id AS supplier_tax_id,
	s.is_active AS supplier_is_active`

// InvoiceListOrder orders invoice listings newest invoice date first.
const InvoiceListOrder = "i.invoice_date DESC, i.created_at DESC, i.id DESC"

// InvoiceListQuery is the plain SQL form of the invoice listing.
const InvoiceListQuery = "SELECT " + InvoiceListColumns + `
FROM invoices i
INNER JOIN suppliers s ON i.supplier_id = s.id
ORDER BY ` + InvoiceListOrder

// invoiceProcedure is the per-driver dialect of the pre-joined invoice listing.
type invoiceProcedure struct {
	install []string
	call    string
}

// Drivers without an entry (sqlite) always use the ORM query.
var invoiceProcedures = map[Driver]invoiceProcedure{
	DriverMySQL: {
		install: []string{
			"DROP PROCEDURE IF EXISTS sp_list_invoices_with_suppliers",
			"CREATE PROCEDURE sp_list_invoices_with_suppliers() " + InvoiceListQuery,
		},
		call: "CALL sp_list_invoices_with_suppliers()",
	},
	DriverPostgres: {
		install: []string{
			"DROP FUNCTION IF EXISTS sp_list_invoices_with_suppliers()",
			`CREATE FUNCTION sp_list_invoices_with_suppliers()
RETURNS TABLE (
	id bigint,
	invoice_number varchar,
	invoice_date date,
	due_date date,
	subtotal numeric,
	tax_amount numeric,
	total_amount numeric,
	status varchar,
	notes text,
	created_at timestamptz,
	updated_at timestamptz,
	supplier_id bigint,
	supplier_name varchar,
	supplier_email varchar,
	supplier_phone varchar,
	supplier_address text,
	supplier_contact_person varchar,
	supplier_tax_id varchar,
	supplier_is_active boolean
) AS $$
BEGIN
	RETURN QUERY ` + InvoiceListQuery + `;
END;
$$ LANGUAGE plpgsql`,
		},
		call: "SELECT * FROM sp_list_invoices_with_suppliers()",
	},
}

// InvoiceListStatement returns the statement that runs the pre-joined invoice
// listing on driver, or false when the driver has none.
func InvoiceListStatement(driver Driver) (string, bool) {
	p, ok := invoiceProcedures[driver]
	if !ok {
		return "", false
	}
	return p.call, true
}

// InstallInvoiceProcedures (re)creates the invoice listing routine for driver.
// It is a no-op for drivers without one.
func InstallInvoiceProcedures(db *gorm.DB, driver Driver) error {
	p, ok := invoiceProcedures[driver]
	if !ok {
		return nil
	}
	for _, stmt := range p.install {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("install invoice procedure (%s): %w", driver, err)
		}
	}
	return nil
}
