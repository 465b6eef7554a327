package services

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"assettrack-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockInput carries the scalar fields of a stock entry create or update.
// Quantity and prices arrive as strings and must parse as finite
// non-negative numbers. Updates are full-replace, like assets.
type StockInput struct {
	EntryDate     string `json:"entry_date" form:"entry_date"`
	ProductName   string `json:"product_name" form:"product_name"`
	Category      string `json:"category" form:"category"`
	Supplier      string `json:"supplier" form:"supplier"`
	Quantity      string `json:"quantity" form:"quantity"`
	Unit          string `json:"unit" form:"unit"`
	PurchasePrice string `json:"purchase_price" form:"purchase_price"`
	SellingPrice  string `json:"selling_price" form:"selling_price"`
	ExpiryDate    string `json:"expiry_date" form:"expiry_date"`
	BatchNumber   string `json:"batch_number" form:"batch_number"`
	Warehouse     string `json:"warehouse" form:"warehouse"`
	RackNumber    string `json:"rack_number" form:"rack_number"`
	Description   string `json:"description" form:"description"`
	PreparedBy    string `json:"prepared_by" form:"prepared_by"`
	ApprovedBy    string `json:"approved_by" form:"approved_by"`
}

// StockEntryDetail is the composed read model for one entry: the joined
// row, its derived current stock and the issuance log.
type StockEntryDetail struct {
	models.StockEntry
	CurrentStock float64             `json:"current_stock"`
	Issues       []models.StockIssue `json:"issues"`
}

// stockSearchColumns is the fixed column set the free-text list filter
// matches against.
var stockSearchColumns = []string{
	"product_name", "category", "supplier", "batch_number", "description",
}

// StockService manages stock intake records and the append-only issuance
// ledger. Available quantity is always derived, never stored.
type StockService struct {
	db             *gorm.DB
	refs           *ReferenceService
	attachments    Attachments
	defaultActor   string
	allowOverissue bool
}

// NewStockService creates the stock ledger. allowOverissue keeps the
// observed behavior of accepting issuances past the remaining quantity
// (yielding a negative derived stock); when false such issuances are
// rejected as validation failures.
func NewStockService(db *gorm.DB, refs *ReferenceService, attachments Attachments, defaultActor string, allowOverissue bool) *StockService {
	return &StockService{
		db:             db,
		refs:           refs,
		attachments:    attachments,
		defaultActor:   defaultActor,
		allowOverissue: allowOverissue,
	}
}

// parseQuantity parses a required finite non-negative number.
func parseQuantity(field, value string) (float64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed < 0 {
		return 0, &ValidationError{Fields: []string{field}, Message: field + " must be a non-negative number"}
	}
	return parsed, nil
}

// parsePrice parses an optional finite non-negative decimal; blank is zero.
func parsePrice(field, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil || parsed.IsNegative() {
		return decimal.Zero, &ValidationError{Fields: []string{field}, Message: field + " must be a non-negative number"}
	}
	return parsed, nil
}

// validate checks required fields and numeric parsing, reporting every
// offending field by name.
func (s *StockService) validate(input *StockInput) error {
	var missing []string
	for field, value := range map[string]string{
		"product_name": input.ProductName,
		"category":     input.Category,
		"supplier":     input.Supplier,
		"unit":         input.Unit,
		"warehouse":    input.Warehouse,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if strings.TrimSpace(input.Quantity) == "" {
		missing = append(missing, "quantity")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// buildEntry maps input plus resolved references onto a row.
func (s *StockService) buildEntry(tx *gorm.DB, input *StockInput) (*models.StockEntry, error) {
	quantity, err := parseQuantity("quantity", input.Quantity)
	if err != nil {
		return nil, err
	}
	purchasePrice, err := parsePrice("purchase_price", input.PurchasePrice)
	if err != nil {
		return nil, err
	}
	sellingPrice, err := parsePrice("selling_price", input.SellingPrice)
	if err != nil {
		return nil, err
	}
	entryDate, err := parseDate("entry_date", input.EntryDate)
	if err != nil {
		return nil, err
	}
	expiryDate, err := parseDate("expiry_date", input.ExpiryDate)
	if err != nil {
		return nil, err
	}

	preparedName := strings.TrimSpace(input.PreparedBy)
	if preparedName == "" {
		preparedName = s.defaultActor
	}
	preparedBy, err := s.refs.ResolveUser(tx, preparedName)
	if err != nil {
		return nil, err
	}
	approvedName := strings.TrimSpace(input.ApprovedBy)
	if approvedName == "" {
		approvedName = s.defaultActor
	}
	approvedBy, err := s.refs.ResolveUser(tx, approvedName)
	if err != nil {
		return nil, err
	}

	return &models.StockEntry{
		EntryDate:     entryDate,
		ProductName:   strings.TrimSpace(input.ProductName),
		Category:      strings.TrimSpace(input.Category),
		Supplier:      strings.TrimSpace(input.Supplier),
		Quantity:      quantity,
		Unit:          strings.TrimSpace(input.Unit),
		PurchasePrice: purchasePrice,
		SellingPrice:  sellingPrice,
		ExpiryDate:    expiryDate,
		BatchNumber:   input.BatchNumber,
		Warehouse:     strings.TrimSpace(input.Warehouse),
		RackNumber:    input.RackNumber,
		Description:   input.Description,
		PreparedBy:    preparedBy,
		ApprovedBy:    approvedBy,
	}, nil
}

// CreateEntry inserts the entry and its optional bill atomically.
func (s *StockService) CreateEntry(input StockInput, bill *FileUpload) (*models.StockEntry, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, &TransactionError{Op: "begin", Err: tx.Error}
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	entry, err := s.buildEntry(tx, &input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Create(entry).Error; err != nil {
		tx.Rollback()
		return nil, &TransactionError{Op: "stock create", Err: err}
	}

	if bill != nil {
		if err := s.attachments.SetBill(tx, entry.ID, *bill); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, &TransactionError{Op: "commit", Err: err}
	}
	return s.loadEntry(entry.ID)
}

// UpdateEntry fully replaces the entry's scalar columns. The bill is
// replaced only when a new file is supplied and cleared only when the
// explicit flag is set; absence alone never deletes an existing bill.
func (s *StockService) UpdateEntry(id uint, input StockInput, bill *FileUpload, clearBill bool) (*models.StockEntry, error) {
	var existing models.StockEntry
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "stock entry", ID: id}
		}
		return nil, err
	}

	if err := s.validate(&input); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, &TransactionError{Op: "begin", Err: tx.Error}
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	updated, err := s.buildEntry(tx, &input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	// Carry the stored bill through the scalar replace.
	updated.BillFilename = existing.BillFilename
	updated.BillPDF = existing.BillPDF
	updated.BillFilesize = existing.BillFilesize

	if err := tx.Save(updated).Error; err != nil {
		tx.Rollback()
		return nil, &TransactionError{Op: "stock update", Err: err}
	}

	if bill != nil {
		if err := s.attachments.SetBill(tx, id, *bill); err != nil {
			tx.Rollback()
			return nil, err
		}
	} else if clearBill {
		if err := s.attachments.ClearBill(tx, id); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, &TransactionError{Op: "commit", Err: err}
	}
	return s.loadEntry(id)
}

// DeleteEntry removes the entry, its issuance rows and its bill.
func (s *StockService) DeleteEntry(id uint) error {
	var existing models.StockEntry
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "stock entry", ID: id}
		}
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return &TransactionError{Op: "begin", Err: tx.Error}
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := tx.Where("stock_entry_id = ?", id).Delete(&models.StockIssue{}).Error; err != nil {
		tx.Rollback()
		return &TransactionError{Op: "issue delete", Err: err}
	}
	if err := tx.Delete(&models.StockEntry{}, id).Error; err != nil {
		tx.Rollback()
		return &TransactionError{Op: "stock delete", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return &TransactionError{Op: "commit", Err: err}
	}
	return nil
}

// Issue appends one issuance row with status "issued". With over-issuing
// allowed (the default) no check against the remaining quantity happens and
// the derived stock may go negative.
func (s *StockService) Issue(entryID uint, quantity float64) (*models.StockIssue, error) {
	var entry models.StockEntry
	if err := s.db.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "stock entry", ID: entryID}
		}
		return nil, err
	}

	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return nil, &ValidationError{Fields: []string{"quantity"}, Message: "quantity must be a positive number"}
	}

	if !s.allowOverissue {
		current, err := s.CurrentStock(entryID)
		if err != nil {
			return nil, err
		}
		if quantity > current {
			return nil, &ValidationError{Fields: []string{"quantity"}, Message: "quantity exceeds remaining stock"}
		}
	}

	issue := models.StockIssue{
		StockEntryID: entryID,
		Quantity:     quantity,
		Status:       models.IssueStatusIssued,
	}
	if err := s.db.Create(&issue).Error; err != nil {
		return nil, &TransactionError{Op: "stock issue", Err: err}
	}
	return &issue, nil
}

// CurrentStock derives the remaining quantity: entry quantity minus the sum
// of issued quantities. Always recomputed, never cached on the row.
func (s *StockService) CurrentStock(entryID uint) (float64, error) {
	var entry models.StockEntry
	if err := s.db.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &NotFoundError{Resource: "stock entry", ID: entryID}
		}
		return 0, err
	}

	var issued float64
	err := s.db.Model(&models.StockIssue{}).
		Where("stock_entry_id = ? AND status = ?", entryID, models.IssueStatusIssued).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&issued).Error
	if err != nil {
		return 0, err
	}
	return entry.Quantity - issued, nil
}

// GetEntry returns the joined entry, its derived stock and issuance log.
func (s *StockService) GetEntry(id uint) (*StockEntryDetail, error) {
	entry, err := s.loadEntry(id)
	if err != nil {
		return nil, err
	}

	current, err := s.CurrentStock(id)
	if err != nil {
		return nil, err
	}

	var issues []models.StockIssue
	if err := s.db.Where("stock_entry_id = ?", id).Order("id ASC").Find(&issues).Error; err != nil {
		return nil, err
	}

	return &StockEntryDetail{StockEntry: *entry, CurrentStock: current, Issues: issues}, nil
}

// Filter builds the list filter for the stock collection: exact matches on
// category and warehouse plus a free-text term.
func (s *StockService) Filter(category, warehouse, search string) *ListFilter {
	return NewListFilter().
		Equal("category", category).
		Equal("warehouse", warehouse).
		Search(search, stockSearchColumns...)
}

// List returns one page of joined rows plus the total count from the same
// filter artifact.
func (s *StockService) List(filter *ListFilter, page, pageSize int) ([]models.StockEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	query := filter.Apply(s.db.Model(&models.StockEntry{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.StockEntry
	err := query.
		Omit("bill_pdf").
		Preload("Preparer").
		Preload("Approver").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// BillPayload returns the entry's bill attachment for download.
func (s *StockService) BillPayload(id uint) (*models.StockEntry, error) {
	var entry models.StockEntry
	if err := s.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "stock entry", ID: id}
		}
		return nil, err
	}
	if !entry.HasBill() {
		return nil, &NotFoundError{Resource: "bill", ID: id}
	}
	return &entry, nil
}

// loadEntry reads back one joined row. The bill payload stays out of
// list/detail reads; BillPayload is the only full-payload path.
func (s *StockService) loadEntry(id uint) (*models.StockEntry, error) {
	var entry models.StockEntry
	err := s.db.Omit("bill_pdf").Preload("Preparer").Preload("Approver").First(&entry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "stock entry", ID: id}
		}
		return nil, err
	}
	return &entry, nil
}
