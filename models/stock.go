package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IssueStatusIssued marks a stock issuance that counts against the entry.
const IssueStatusIssued = "issued"

// StockEntry is one consumable intake record. The available quantity is
// never stored on the row; it is always derived from the issuance log
// (quantity minus the sum of issued quantities).
type StockEntry struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	EntryDate     *time.Time      `json:"entry_date"`
	ProductName   string          `json:"product_name" gorm:"not null;size:255"`
	Category      string          `json:"category" gorm:"not null;size:255;index"`
	Supplier      string          `json:"supplier" gorm:"not null;size:255"`
	Quantity      float64         `json:"quantity" gorm:"not null"`
	Unit          string          `json:"unit" gorm:"not null;size:50"`
	PurchasePrice decimal.Decimal `json:"purchase_price" gorm:"type:decimal(12,2)"`
	SellingPrice  decimal.Decimal `json:"selling_price" gorm:"type:decimal(12,2)"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
	BatchNumber   string          `json:"batch_number" gorm:"default:''"`
	Warehouse     string          `json:"warehouse" gorm:"not null;size:255;index"`
	RackNumber    string          `json:"rack_number" gorm:"default:''"`
	Description   string          `json:"description" gorm:"type:text;default:''"`
	PreparedBy    *uint           `json:"prepared_by"`
	ApprovedBy    *uint           `json:"approved_by"`
	BillFilename  string          `json:"bill_filename" gorm:"default:''"`
	BillPDF       []byte          `json:"-" gorm:"column:bill_pdf;type:blob"`
	BillFilesize  int64           `json:"bill_filesize" gorm:"default:0"`
	CreatedAt     time.Time       `json:"created_at"`

	// Relations
	Preparer *User `json:"preparer,omitempty" gorm:"foreignKey:PreparedBy"`
	Approver *User `json:"approver,omitempty" gorm:"foreignKey:ApprovedBy"`
}

// HasBill reports whether the entry carries a bill attachment.
func (e *StockEntry) HasBill() bool {
	return e.BillFilename != "" && e.BillFilesize > 0
}

// BeforeCreate sets the creation timestamp
func (e *StockEntry) BeforeCreate(tx *gorm.DB) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return nil
}

// StockIssue is one append-only issuance row against a stock entry.
type StockIssue struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	StockEntryID uint    `json:"stock_entry_id" gorm:"not null;index"`
	Quantity     float64 `json:"quantity" gorm:"not null"`
	Status       string  `json:"status" gorm:"not null;size:20;default:'issued'"`
}
