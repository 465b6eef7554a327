package models

import (
	"time"

	"gorm.io/gorm"
)

// Asset statuses
const (
	StatusIssued   = "Issued"
	StatusReceived = "Received"
	StatusInStock  = "InStock"
)

// Document type classifications for asset documents
const (
	DocumentTypePDF   = "pdf"
	DocumentTypeDoc   = "doc"
	DocumentTypeDocx  = "docx"
	DocumentTypeOther = "other"
)

// Asset is a tracked physical item (device, vehicle, ...). Status selects
// which of issue_date/received_date is set; InStock clears both.
type Asset struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	TypeID              uint       `json:"type_id" gorm:"not null;index"`
	BrandID             uint       `json:"brand_id" gorm:"not null;index"`
	ModelName           string     `json:"model_name" gorm:"not null;size:255"`
	Status              string     `json:"status" gorm:"not null;size:20;index"`
	VehicleNumber       string     `json:"vehicle_number" gorm:"default:''"`
	SerialNumber        string     `json:"serial_number" gorm:"default:''"`
	ImeiNumber          string     `json:"imei_number" gorm:"default:''"`
	IPAddress           string     `json:"ip_address" gorm:"column:ip_address;default:''"`
	GID                 string     `json:"gid" gorm:"column:gid;default:''"`
	IssuedTo            string     `json:"issued_to" gorm:"default:''"`
	ReceivedFrom        string     `json:"received_from" gorm:"default:''"`
	IssueDate           *time.Time `json:"issue_date"`
	ReceivedDate        *time.Time `json:"received_date"`
	DeviceStatus        string     `json:"device_status" gorm:"default:'';index"`
	DeviceRemark        string     `json:"device_remark" gorm:"type:text;default:''"`
	RecoveryName        string     `json:"recovery_name" gorm:"default:''"`
	RecoveryStatus      string     `json:"recovery_status" gorm:"default:''"`
	PreparedBy          *uint      `json:"prepared_by"`
	ApprovedBy          *uint      `json:"approved_by"`
	MailDate            *time.Time `json:"mail_date"`
	ReplaceDeviceSNIMEI string     `json:"replace_device_sn_imei" gorm:"column:replace_device_sn_imei;default:''"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	// Relations
	Type      AssetType       `json:"type" gorm:"foreignKey:TypeID"`
	Brand     AssetBrand      `json:"brand" gorm:"foreignKey:BrandID"`
	Preparer  *User           `json:"preparer,omitempty" gorm:"foreignKey:PreparedBy"`
	Approver  *User           `json:"approver,omitempty" gorm:"foreignKey:ApprovedBy"`
	Images    []AssetImage    `json:"images" gorm:"foreignKey:AssetID"`
	Documents []AssetDocument `json:"documents" gorm:"foreignKey:AssetID"`
}

// BeforeCreate sets the timestamps
func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the update timestamp
func (a *Asset) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return nil
}

// AssetImage stores a photo payload in the row itself. At most one image per
// asset carries is_primary; the attachment service assigns it to the first
// image ever stored for the asset.
type AssetImage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	AssetID    uint      `json:"asset_id" gorm:"not null;index"`
	ImageData  []byte    `json:"-" gorm:"type:blob"`
	ImageName  string    `json:"image_name" gorm:"not null"`
	ImageSize  int64     `json:"image_size" gorm:"not null"`
	MimeType   string    `json:"mime_type" gorm:"not null"`
	IsPrimary  bool      `json:"is_primary" gorm:"default:false"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// BeforeCreate sets the upload timestamp
func (i *AssetImage) BeforeCreate(tx *gorm.DB) error {
	if i.UploadedAt.IsZero() {
		i.UploadedAt = time.Now()
	}
	return nil
}

// AssetDocument stores a supporting document payload in the row itself.
// An asset keeps a single active document; replacing it removes the old rows.
type AssetDocument struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AssetID      uint      `json:"asset_id" gorm:"not null;index"`
	DocumentData []byte    `json:"-" gorm:"type:blob"`
	DocumentName string    `json:"document_name" gorm:"not null"`
	DocumentType string    `json:"document_type" gorm:"not null;size:10"`
	FileSize     int64     `json:"file_size" gorm:"not null"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// BeforeCreate sets the upload timestamp
func (d *AssetDocument) BeforeCreate(tx *gorm.DB) error {
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now()
	}
	return nil
}
