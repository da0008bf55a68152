package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// PrintBatch is one confirmed print run covering one or more catalog
// items. DebtEntryID is zero when the batch stayed within the quota
// limits.
type PrintBatch struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	SellerID    snowflake.ID   `gorm:"not null;index" json:"seller_id"`
	Units       int64          `gorm:"not null" json:"units"`
	Items       datatypes.JSON `gorm:"not null;default:'[]'" json:"items"`
	ChargeCents int64          `gorm:"not null;default:0" json:"charge_cents"`
	DebtEntryID snowflake.ID   `gorm:"not null;default:0" json:"debt_entry_id,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BatchItem is one catalog item's share of a batch, stored on the batch
// row as a JSON array.
type BatchItem struct {
	ItemID snowflake.ID `json:"item_id"`
	Units  int64        `json:"units"`
}

func EncodeItems(items []BatchItem) (datatypes.JSON, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func (b *PrintBatch) DecodeItems() ([]BatchItem, error) {
	if b == nil || len(b.Items) == 0 {
		return nil, nil
	}
	var items []BatchItem
	if err := json.Unmarshal(b.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}
