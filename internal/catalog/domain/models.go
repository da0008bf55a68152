package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CatalogItem is a printable design. SellerID zero means the item sits in
// the shared pool and is not assigned to any account.
type CatalogItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Category  string       `gorm:"index" json:"category,omitempty"`
	FileRef   string       `json:"file_ref,omitempty"`
	SellerID  snowflake.ID `gorm:"index" json:"seller_id,omitempty"`
	Active    bool         `gorm:"not null;default:true;index" json:"active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
