package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice is a supplier bill.
type Invoice struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	SupplierID    uint            `json:"supplier_id" gorm:"not null;index"`
	InvoiceNumber string          `json:"invoice_number" gorm:"uniqueIndex;size:100;not null"`
	InvoiceDate   datatypes.Date  `json:"invoice_date" gorm:"not null;index"`
	DueDate       datatypes.Date  `json:"due_date" gorm:"not null"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	TaxAmount     decimal.Decimal `json:"tax_amount" gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Status        InvoiceStatus   `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes         *string         `json:"notes" gorm:"type:text"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relations
	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT"`
}

// InvoiceListRow is the flattened invoice-with-supplier projection returned by
// the invoice listing, whichever query strategy produced it.
type InvoiceListRow struct {
	ID                    uint            `json:"id" gorm:"column:id"`
	InvoiceNumber         string          `json:"invoice_number" gorm:"column:invoice_number"`
	InvoiceDate           datatypes.Date  `json:"invoice_date" gorm:"column:invoice_date"`
	DueDate               datatypes.Date  `json:"due_date" gorm:"column:due_date"`
	Subtotal              decimal.Decimal `json:"subtotal" gorm:"column:subtotal"`
	TaxAmount             decimal.Decimal `json:"tax_amount" gorm:"column:tax_amount"`
	TotalAmount           decimal.Decimal `json:"total_amount" gorm:"column:total_amount"`
	Status                InvoiceStatus   `json:"status" gorm:"column:status"`
	Notes                 *string         `json:"notes" gorm:"column:notes"`
	CreatedAt             time.Time       `json:"created_at" gorm:"column:created_at"`
	UpdatedAt             time.Time       `json:"updated_at" gorm:"column:updated_at"`
	SupplierID            uint            `json:"supplier_id" gorm:"column:supplier_id"`
	SupplierName          string          `json:"supplier_name" gorm:"column:supplier_name"`
	SupplierEmail         string          `json:"supplier_email" gorm:"column:supplier_email"`
	SupplierPhone         string          `json:"supplier_phone" gorm:"column:supplier_phone"`
	SupplierAddress       string          `json:"supplier_address" gorm:"column:supplier_address"`
	SupplierContactPerson string          `json:"supplier_contact_person" gorm:"column:supplier_contact_person"`
	SupplierTaxID         string          `json:"supplier_tax_id" gorm:"column:supplier_tax_id"`
	SupplierIsActive      bool            `json:"supplier_is_active" gorm:"column:supplier_is_active"`
}
