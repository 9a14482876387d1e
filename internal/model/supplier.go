package model

import "time"

// Supplier is an invoicing counterparty. Suppliers are not owned by users.
type Supplier struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"size:255;not null;index"`
	Email         string    `json:"email" gorm:"size:255;not null"`
	Phone         string    `json:"phone" gorm:"size:50"`
	Address       string    `json:"address" gorm:"type:text"`
	ContactPerson string    `json:"contact_person" gorm:"size:255"`
	TaxID         string    `json:"tax_id" gorm:"size:100"`
	IsActive      bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
