package services

import (
	"errors"
	"strings"
	"time"

	"assettrack-backend/models"

	"gorm.io/gorm"
)

// AssetInput carries the scalar fields of an asset create or update.
// Dates arrive as "2006-01-02" strings; blank means absent. Updates use
// the same struct with full-replace semantics: omitted optional fields
// reset the stored columns, they are never left untouched.
type AssetInput struct {
	TypeName            string `json:"type_name" form:"type_name"`
	BrandName           string `json:"brand_name" form:"brand_name"`
	ModelName           string `json:"model_name" form:"model_name"`
	Status              string `json:"status" form:"status"`
	VehicleNumber       string `json:"vehicle_number" form:"vehicle_number"`
	SerialNumber        string `json:"serial_number" form:"serial_number"`
	ImeiNumber          string `json:"imei_number" form:"imei_number"`
	IPAddress           string `json:"ip_address" form:"ip_address"`
	GID                 string `json:"gid" form:"gid"`
	IssuedTo            string `json:"issued_to" form:"issued_to"`
	ReceivedFrom        string `json:"received_from" form:"received_from"`
	IssueDate           string `json:"issue_date" form:"issue_date"`
	ReceivedDate        string `json:"received_date" form:"received_date"`
	DeviceStatus        string `json:"device_status" form:"device_status"`
	DeviceRemark        string `json:"device_remark" form:"device_remark"`
	RecoveryName        string `json:"recovery_name" form:"recovery_name"`
	RecoveryStatus      string `json:"recovery_status" form:"recovery_status"`
	PreparedBy          string `json:"prepared_by" form:"prepared_by"`
	ApprovedBy          string `json:"approved_by" form:"approved_by"`
	MailDate            string `json:"mail_date" form:"mail_date"`
	ReplaceDeviceSNIMEI string `json:"replace_device_sn_imei" form:"replace_device_sn_imei"`
	Notes               string `json:"notes" form:"notes"`
}

// AssetDetail is the composed read model for a single asset: the joined
// row plus its full audit trail, newest first.
type AssetDetail struct {
	models.Asset
	History []models.AssetHistory `json:"history"`
}

// assetSearchColumns is the fixed column set the free-text list filter
// matches against.
var assetSearchColumns = []string{
	"model_name", "vehicle_number", "serial_number", "imei_number",
	"ip_address", "gid", "issued_to", "received_from", "device_remark",
}

const dateLayout = "2006-01-02"

// AssetService orchestrates the reference resolver, attachment store and
// audit log inside one transaction per mutation.
type AssetService struct {
	db           *gorm.DB
	refs         *ReferenceService
	attachments  Attachments
	history      *HistoryService
	defaultActor string
}

// NewAssetService creates the asset repository. defaultActor is the person
// natural key used when prepared_by/approved_by are absent and when no
// request actor is known for the audit trail.
func NewAssetService(db *gorm.DB, refs *ReferenceService, attachments Attachments, history *HistoryService, defaultActor string) *AssetService {
	return &AssetService{
		db:           db,
		refs:         refs,
		attachments:  attachments,
		history:      history,
		defaultActor: defaultActor,
	}
}

// validate checks the required fields and reports every offender by name.
func (s *AssetService) validate(input *AssetInput) error {
	var missing []string
	if strings.TrimSpace(input.TypeName) == "" {
		missing = append(missing, "type_name")
	}
	if strings.TrimSpace(input.BrandName) == "" {
		missing = append(missing, "brand_name")
	}
	if strings.TrimSpace(input.ModelName) == "" {
		missing = append(missing, "model_name")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// parseDate parses an optional "2006-01-02" value.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, &ValidationError{Fields: []string{field}, Message: field + " must be a YYYY-MM-DD date"}
	}
	return &parsed, nil
}

// buildAsset maps input plus resolved references onto a row, deriving the
// issue/received date pair from the status: Issued keeps only issue_date,
// Received keeps only received_date, InStock clears both.
func (s *AssetService) buildAsset(input *AssetInput, typeID, brandID, preparedBy, approvedBy *uint) (*models.Asset, error) {
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.StatusInStock
	}

	var issueDate, receivedDate *time.Time
	var err error
	switch status {
	case models.StatusIssued:
		if issueDate, err = parseDate("issue_date", input.IssueDate); err != nil {
			return nil, err
		}
	case models.StatusReceived:
		if receivedDate, err = parseDate("received_date", input.ReceivedDate); err != nil {
			return nil, err
		}
	}

	mailDate, err := parseDate("mail_date", input.MailDate)
	if err != nil {
		return nil, err
	}

	return &models.Asset{
		TypeID:              *typeID,
		BrandID:             *brandID,
		ModelName:           strings.TrimSpace(input.ModelName),
		Status:              status,
		VehicleNumber:       input.VehicleNumber,
		SerialNumber:        input.SerialNumber,
		ImeiNumber:          input.ImeiNumber,
		IPAddress:           input.IPAddress,
		GID:                 input.GID,
		IssuedTo:            input.IssuedTo,
		ReceivedFrom:        input.ReceivedFrom,
		IssueDate:           issueDate,
		ReceivedDate:        receivedDate,
		DeviceStatus:        input.DeviceStatus,
		DeviceRemark:        input.DeviceRemark,
		RecoveryName:        input.RecoveryName,
		RecoveryStatus:      input.RecoveryStatus,
		PreparedBy:          preparedBy,
		ApprovedBy:          approvedBy,
		MailDate:            mailDate,
		ReplaceDeviceSNIMEI: input.ReplaceDeviceSNIMEI,
	}, nil
}

// resolveReferences resolves type, brand and the two person fields inside
// the transaction. Preparer and approver fall back to the default actor.
func (s *AssetService) resolveReferences(tx *gorm.DB, input *AssetInput) (typeID, brandID, preparedBy, approvedBy *uint, err error) {
	if typeID, err = s.refs.ResolveType(tx, input.TypeName); err != nil {
		return
	}
	if brandID, err = s.refs.ResolveBrand(tx, input.BrandName); err != nil {
		return
	}

	preparedName := strings.TrimSpace(input.PreparedBy)
	if preparedName == "" {
		preparedName = s.defaultActor
	}
	if preparedBy, err = s.refs.ResolveUser(tx, preparedName); err != nil {
		return
	}

	approvedName := strings.TrimSpace(input.ApprovedBy)
	if approvedName == "" {
		approvedName = s.defaultActor
	}
	approvedBy, err = s.refs.ResolveUser(tx, approvedName)
	return
}

// auditActor picks the id recorded as changed_by: the request actor when
// known, otherwise the resolved fallback.
func (s *AssetService) auditActor(tx *gorm.DB, actorID uint, fallback *uint) (uint, error) {
	if actorID != 0 {
		return actorID, nil
	}
	if fallback != nil {
		return *fallback, nil
	}
	resolved, err := s.refs.ResolveUser(tx, s.defaultActor)
	if err != nil {
		return 0, err
	}
	return *resolved, nil
}

// Create validates the input, then writes the asset row, its attachments
// and one CREATE audit row in a single transaction.
func (s *AssetService) Create(input AssetInput, images []FileUpload, document *FileUpload, actorID uint) (*models.Asset, error) {
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

	typeID, brandID, preparedBy, approvedBy, err := s.resolveReferences(tx, &input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	asset, err := s.buildAsset(&input, typeID, brandID, preparedBy, approvedBy)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Create(asset).Error; err != nil {
		tx.Rollback()
		return nil, &TransactionError{Op: "asset create", Err: err}
	}

	if _, err := s.attachments.AddImages(tx, asset.ID, images); err != nil {
		tx.Rollback()
		return nil, err
	}
	if document != nil {
		if _, err := s.attachments.SetDocument(tx, asset.ID, *document); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	actor, err := s.auditActor(tx, actorID, preparedBy)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := s.history.Append(tx, asset.ID, models.ActionCreate, actor, nil, asset, input.Notes); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, &TransactionError{Op: "commit", Err: err}
	}

	return s.loadAsset(asset.ID)
}

// Update fully replaces the asset's scalar columns from the input, adds any
// newly supplied images, swaps the document when one is supplied, and
// appends one UPDATE audit row, all in a single transaction.
func (s *AssetService) Update(id uint, input AssetInput, images []FileUpload, document *FileUpload, actorID uint) (*models.Asset, error) {
	var existing models.Asset
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "asset", ID: id}
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

	typeID, brandID, preparedBy, approvedBy, err := s.resolveReferences(tx, &input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	updated, err := s.buildAsset(&input, typeID, brandID, preparedBy, approvedBy)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := tx.Save(updated).Error; err != nil {
		tx.Rollback()
		return nil, &TransactionError{Op: "asset update", Err: err}
	}

	// Images are additive through updates; removal is a separate operation.
	if _, err := s.attachments.AddImages(tx, id, images); err != nil {
		tx.Rollback()
		return nil, err
	}
	if document != nil {
		if _, err := s.attachments.SetDocument(tx, id, *document); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	actor, err := s.auditActor(tx, actorID, preparedBy)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := s.history.Append(tx, id, models.ActionUpdate, actor, &existing, updated, input.Notes); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, &TransactionError{Op: "commit", Err: err}
	}

	return s.loadAsset(id)
}

// Delete writes a DELETE audit row carrying the pre-deletion snapshot, then
// removes the attachment rows and the asset itself. The audit row survives
// because asset_history has no cascading foreign key.
func (s *AssetService) Delete(id, actorID uint) error {
	var existing models.Asset
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "asset", ID: id}
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

	actor, err := s.auditActor(tx, actorID, existing.PreparedBy)
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := s.history.Append(tx, id, models.ActionDelete, actor, &existing, nil, ""); err != nil {
		tx.Rollback()
		return err
	}

	if err := s.attachments.DeleteForAsset(tx, id); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Asset{}, id).Error; err != nil {
		tx.Rollback()
		return &TransactionError{Op: "asset delete", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return &TransactionError{Op: "commit", Err: err}
	}
	return nil
}

// Get returns the joined asset plus its audit trail.
func (s *AssetService) Get(id uint) (*AssetDetail, error) {
	asset, err := s.loadAsset(id)
	if err != nil {
		return nil, err
	}

	history, err := s.history.ForAsset(s.db, id)
	if err != nil {
		return nil, err
	}

	return &AssetDetail{Asset: *asset, History: history}, nil
}

// Filter builds the list filter for the asset collection: exact matches on
// status and device_status plus a free-text term across the documented
// searchable columns.
func (s *AssetService) Filter(status, deviceStatus, search string) *ListFilter {
	return NewListFilter().
		Equal("status", status).
		Equal("device_status", deviceStatus).
		Search(search, assetSearchColumns...)
}

// List returns one page of joined rows plus the total count. Both queries
// consume the same filter artifact; only the data query paginates.
func (s *AssetService) List(filter *ListFilter, page, pageSize int) ([]models.Asset, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	query := filter.Apply(s.db.Model(&models.Asset{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assets []models.Asset
	err := s.preloadAsset(query).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&assets).Error
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// ListAll returns every matching joined row; the spreadsheet export
// consumes this.
func (s *AssetService) ListAll(filter *ListFilter) ([]models.Asset, error) {
	var assets []models.Asset
	err := s.preloadAsset(filter.Apply(s.db.Model(&models.Asset{}))).
		Order("created_at DESC, id DESC").
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// preloadAsset attaches the reference joins and the metadata-only
// attachment rows (payloads excluded).
func (s *AssetService) preloadAsset(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Type").
		Preload("Brand").
		Preload("Preparer").
		Preload("Approver").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Select(imageMetaColumns).Order("uploaded_at ASC, id ASC")
		}).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Select(documentMetaColumns).Order("uploaded_at ASC, id ASC")
		})
}

// loadAsset reads back one joined row.
func (s *AssetService) loadAsset(id uint) (*models.Asset, error) {
	var asset models.Asset
	if err := s.preloadAsset(s.db).First(&asset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "asset", ID: id}
		}
		return nil, err
	}
	return &asset, nil
}
