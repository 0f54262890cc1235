package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock transaction type enum constants
const (
	StockTxTypeIn  = "IN"
	StockTxTypeOut = "OUT"
)

// InventoryItem is a consumable or spare part tracked on the floor.
type InventoryItem struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Code         string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Category     string    `gorm:"type:varchar(100);index" json:"category"`
	Unit         string    `gorm:"type:varchar(20)" json:"unit"` // adet, kg, litre...
	CurrentStock int       `gorm:"not null;default:0" json:"current_stock"`
	MinStock     int       `gorm:"not null;default:0" json:"min_stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StockTransaction records every stock movement with the resulting level, so the
// ledger alone can reconstruct history.
type StockTransaction struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"item_id"`
	Item            *InventoryItem `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	TransactionType string         `gorm:"type:varchar(10);not null" json:"transaction_type"` // IN / OUT
	QuantityChanged int            `gorm:"not null" json:"quantity_changed"`                  // signed
	StockAfter      int            `gorm:"not null" json:"stock_after"`
	Note            string         `gorm:"type:text" json:"note"`
	CreatedBy       *uuid.UUID     `gorm:"type:uuid" json:"created_by"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
}
