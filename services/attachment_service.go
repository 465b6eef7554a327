package services

import (
	"errors"
	"path/filepath"
	"strings"

	"assettrack-backend/models"

	"gorm.io/gorm"
)

// FileUpload is one fully buffered attachment payload. Controllers read the
// whole multipart file into memory before the transaction starts; a rollback
// simply discards the bytes.
type FileUpload struct {
	Name string
	Mime string
	Data []byte
}

// imageMetaColumns excludes the blob so list and detail reads stay small.
const imageMetaColumns = "id, asset_id, image_name, image_size, mime_type, is_primary, uploaded_at"

// documentMetaColumns excludes the blob for the same reason.
const documentMetaColumns = "id, asset_id, document_name, document_type, file_size, uploaded_at"

// Attachments is the storage capability the asset and stock services write
// through. The shipped implementation keeps payloads in the owning rows'
// tables; swapping in external object storage only means replacing this.
type Attachments interface {
	AddImages(tx *gorm.DB, assetID uint, files []FileUpload) ([]models.AssetImage, error)
	SetDocument(tx *gorm.DB, assetID uint, file FileUpload) (*models.AssetDocument, error)
	DeleteForAsset(tx *gorm.DB, assetID uint) error
	ImageMetadata(db *gorm.DB, assetID uint) ([]models.AssetImage, error)
	ImagePayload(db *gorm.DB, assetID, imageID uint) (*models.AssetImage, error)
	DocumentMetadata(db *gorm.DB, assetID uint) ([]models.AssetDocument, error)
	DocumentPayload(db *gorm.DB, assetID uint) (*models.AssetDocument, error)
	SetBill(tx *gorm.DB, entryID uint, file FileUpload) error
	ClearBill(tx *gorm.DB, entryID uint) error
}

// AttachmentService stores binary payloads in-row (asset_images,
// asset_documents, and the bill columns of stock_entries).
type AttachmentService struct{}

// NewAttachmentService creates the in-row attachment store.
func NewAttachmentService() *AttachmentService {
	return &AttachmentService{}
}

// classifyDocumentType maps a filename extension into the closed set
// {pdf, doc, docx, other}.
func classifyDocumentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return models.DocumentTypePDF
	case ".doc":
		return models.DocumentTypeDoc
	case ".docx":
		return models.DocumentTypeDocx
	default:
		return models.DocumentTypeOther
	}
}

// AddImages stores every payload for the asset. When the asset has no
// primary image yet, the first stored file becomes primary. The zero-primary
// check is not serialized against concurrent uploads to the same asset.
func (s *AttachmentService) AddImages(tx *gorm.DB, assetID uint, files []FileUpload) ([]models.AssetImage, error) {
	if len(files) == 0 {
		return nil, nil
	}

	var primaryCount int64
	if err := tx.Model(&models.AssetImage{}).
		Where("asset_id = ? AND is_primary = ?", assetID, true).
		Count(&primaryCount).Error; err != nil {
		return nil, &AttachmentError{Op: "image count", Err: err}
	}

	stored := make([]models.AssetImage, 0, len(files))
	for i, file := range files {
		image := models.AssetImage{
			AssetID:   assetID,
			ImageData: file.Data,
			ImageName: file.Name,
			ImageSize: int64(len(file.Data)),
			MimeType:  file.Mime,
			IsPrimary: primaryCount == 0 && i == 0,
		}
		if err := tx.Create(&image).Error; err != nil {
			return nil, &AttachmentError{Op: "image write", Err: err}
		}
		image.ImageData = nil
		stored = append(stored, image)
	}
	return stored, nil
}

// SetDocument replaces the asset's document set with the given file:
// delete every existing row, then insert the new one.
func (s *AttachmentService) SetDocument(tx *gorm.DB, assetID uint, file FileUpload) (*models.AssetDocument, error) {
	if err := tx.Where("asset_id = ?", assetID).Delete(&models.AssetDocument{}).Error; err != nil {
		return nil, &AttachmentError{Op: "document replace", Err: err}
	}

	document := models.AssetDocument{
		AssetID:      assetID,
		DocumentData: file.Data,
		DocumentName: file.Name,
		DocumentType: classifyDocumentType(file.Name),
		FileSize:     int64(len(file.Data)),
	}
	if err := tx.Create(&document).Error; err != nil {
		return nil, &AttachmentError{Op: "document write", Err: err}
	}
	document.DocumentData = nil
	return &document, nil
}

// DeleteForAsset removes every image and document row of the asset,
// tolerating their absence.
func (s *AttachmentService) DeleteForAsset(tx *gorm.DB, assetID uint) error {
	if err := tx.Where("asset_id = ?", assetID).Delete(&models.AssetImage{}).Error; err != nil {
		return &AttachmentError{Op: "image delete", Err: err}
	}
	if err := tx.Where("asset_id = ?", assetID).Delete(&models.AssetDocument{}).Error; err != nil {
		return &AttachmentError{Op: "document delete", Err: err}
	}
	return nil
}

// ImageMetadata returns the asset's image rows without their payloads.
func (s *AttachmentService) ImageMetadata(db *gorm.DB, assetID uint) ([]models.AssetImage, error) {
	var images []models.AssetImage
	err := db.Select(imageMetaColumns).
		Where("asset_id = ?", assetID).
		Order("uploaded_at ASC, id ASC").
		Find(&images).Error
	if err != nil {
		return nil, &AttachmentError{Op: "image metadata", Err: err}
	}
	return images, nil
}

// ImagePayload returns one image row including its payload.
func (s *AttachmentService) ImagePayload(db *gorm.DB, assetID, imageID uint) (*models.AssetImage, error) {
	var image models.AssetImage
	err := db.Where("id = ? AND asset_id = ?", imageID, assetID).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "image", ID: imageID}
		}
		return nil, &AttachmentError{Op: "image read", Err: err}
	}
	return &image, nil
}

// DocumentMetadata returns the asset's document rows without payloads.
func (s *AttachmentService) DocumentMetadata(db *gorm.DB, assetID uint) ([]models.AssetDocument, error) {
	var documents []models.AssetDocument
	err := db.Select(documentMetaColumns).
		Where("asset_id = ?", assetID).
		Order("uploaded_at ASC, id ASC").
		Find(&documents).Error
	if err != nil {
		return nil, &AttachmentError{Op: "document metadata", Err: err}
	}
	return documents, nil
}

// DocumentPayload returns the asset's active document including its payload.
func (s *AttachmentService) DocumentPayload(db *gorm.DB, assetID uint) (*models.AssetDocument, error) {
	var document models.AssetDocument
	err := db.Where("asset_id = ?", assetID).Order("uploaded_at DESC").First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "document", ID: assetID}
		}
		return nil, &AttachmentError{Op: "document read", Err: err}
	}
	return &document, nil
}

// SetBill writes the bill attachment columns of a stock entry.
func (s *AttachmentService) SetBill(tx *gorm.DB, entryID uint, file FileUpload) error {
	err := tx.Model(&models.StockEntry{}).Where("id = ?", entryID).Updates(map[string]interface{}{
		"bill_filename": file.Name,
		"bill_pdf":      file.Data,
		"bill_filesize": int64(len(file.Data)),
	}).Error
	if err != nil {
		return &AttachmentError{Op: "bill write", Err: err}
	}
	return nil
}

// ClearBill blanks the bill attachment columns of a stock entry.
func (s *AttachmentService) ClearBill(tx *gorm.DB, entryID uint) error {
	err := tx.Model(&models.StockEntry{}).Where("id = ?", entryID).Updates(map[string]interface{}{
		"bill_filename": "",
		"bill_pdf":      []byte(nil),
		"bill_filesize": int64(0),
	}).Error
	if err != nil {
		return &AttachmentError{Op: "bill clear", Err: err}
	}
	return nil
}
