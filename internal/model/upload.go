package model

import "time"

// FileType classifies an uploaded file for text extraction.
type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
)

// Upload is a stored file owned by a user.
// ExtractedText stays nil when extraction failed or has not run yet.
type Upload struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           uint      `json:"user_id" gorm:"not null;index"`
	OriginalFilename string    `json:"original_filename" gorm:"size:255;not null"`
	FilePath         string    `json:"file_path" gorm:"size:512;not null"`
	FileType         FileType  `json:"file_type" gorm:"type:varchar(10);not null"`
	ExtractedText    *string   `json:"extracted_text" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
