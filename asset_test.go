package main

import (
	"errors"
	"testing"

	"assettrack-backend/models"
	"assettrack-backend/services"

	"github.com/stretchr/testify/assert"
)

func TestCreateAssetRoundTrip(t *testing.T) {
	db := setupTestDB()
	assetService := newTestAssetService(db)

	input := validAssetInput()
	input.SerialNumber = "SN-1001"
	input.DeviceStatus = "Working"

	created, err := assetService.Create(input, nil, nil, 0)
	assert.NoError(t, err)
	assert.NotZero(t, created.ID)

	detail, err := assetService.Get(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Latitude", detail.ModelName)
	assert.Equal(t, "SN-1001", detail.SerialNumber)
	assert.Equal(t, "Working", detail.DeviceStatus)
	assert.Equal(t, "Laptop", detail.Type.TypeName)
	assert.Equal(t, "Dell", detail.Brand.BrandName)

	// Exactly one CREATE audit row exists for the new asset.
	var count int64
	db.Model(&models.AssetHistory{}).
		Where("asset_id = ? AND action_type = ?", created.ID, models.ActionCreate).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateAssetInStockClearsBothDates(t *testing.T) {
	db := setupTestDB()
	assetService := newTestAssetService(db)

	input := validAssetInput()
	input.IssueDate = "2024-01-15"
	input.ReceivedDate = "2024-02-20"

	created, err := assetService.Create(input, nil, nil, 0)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusInStock, created.Status)
	assert.Nil(t, created.IssueDate)
	assert.Nil(t, created.ReceivedDate)
	assert.Empty(t, created.Images)
}

func TestCreateAssetIssuedKeepsOnlyIssueDate(t *testing.T) {
	db := setupTestDB()
	assetService := newTestAssetService(db)

	input := validAssetInput()
	input.Status = models.StatusIssued
	input.IssueDate = "2024-01-15"
	input.ReceivedDate = "2024-02-20"

	created, err := assetService.Create(input, nil, nil, 0)
	assert.NoError(t, err)
	assert.NotNil(t, created.IssueDate)
	assert.Equal(t, "2024-01-15", created.IssueDate.Format("2006-01-02"))
	assert.Nil(t, created.ReceivedDate)
}

func TestCreateAssetValidationNamesMissingFields(t *testing.T) {
	db := setupTestDB()
	assetService := newTestAssetService(db)

	_, err := assetService.Create(services.AssetInput{ModelName: "Latitude"}, nil, nil, 0)
	assert.Error(t, err)

	var validationErr *services.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.ElementsMatch(t, []string{"type_name", "brand_name"}, validationErr.Fields)
}

func TestCreateAssetDefaultsPreparerAndApprover(t *testing.T) {
	db := setupTestDB()
	assetService := newTestAssetService(db)

	created, err := assetService.Create(validAssetInput(), nil, nil, 0)
	assert.NoError(t, err)
	assert.NotNil(t, created.PreparedBy)
	assert.NotNil(t, created.ApprovedBy)
	assert.NotNil(t, created.Preparer)
	assert.Equal(t, "System Admin", created.Preparer.FullName)
}

func TestCreateAssetStoresImagesAndDocument(t *testing.T) {
	db := setupTestDB()
	assetService := newTestAssetService(db)

	images := []services.FileUpload{
		{Name: "front.jpg", Mime: "image/jpeg", Data: []byte("front-bytes")},
		{Name: "back.jpg", Mime: "image/jpeg", Data: []byte("back-bytes")},
	}
	document := &services.FileUpload{Name: "invoice.pdf", Mime: "application/pdf", Data: []byte("pdf-bytes")}

	created, err := assetService.Create(validAssetInput(), images, document, 0)
	assert.NoError(t, err)
	assert.Len(t, created.Images, 2)
	assert.Len(t, created.Documents, 1)

	// The first image ever stored is the primary one.
	assert.True(t, created.Images[0].IsPrimary)
	assert.False(t, created.Images[1].IsPrimary)
	assert.Equal(t, "front.jpg", created.Images[0].ImageName)
	assert.Equal(t, int64(len("front-bytes")), created.Images[0].ImageSize)

	// Metadata reads exclude the payload.
	assert.Nil(t, created.Images[0].ImageData)

	assert.Equal(t, models.DocumentTypePDF, created.Documents[0].DocumentType)
}

func TestUpdateAssetFullyReplacesScalars(t *testing.T) {
	db := setupTestDB()
	assetService := newTestAssetService(db)

	input := validAssetInput()
	input.SerialNumber = "SN-OLD"
	input.DeviceRemark = "scratched lid"
	created, err := assetService.Create(input, nil, nil, 0)
	assert.NoError(t, err)

	// The update omits serial number and remark; both reset.
	updated, err := assetService.Update(created.ID, services.AssetInput{
		TypeName:  "Laptop",
		BrandName: "Dell",
		ModelName: "Latitude 2",
		Status:    models.StatusIssued,
		IssueDate: "2024-01-15",
		IssuedTo:  "Field Team",
	}, nil, nil, 0)
	assert.NoError(t, err)

	assert.Equal(t, "Latitude 2", updated.ModelName)
	assert.Equal(t, "", updated.SerialNumber)
	assert.Equal(t, "", updated.DeviceRemark)
	assert.Equal(t, "Field Team", updated.IssuedTo)
	assert.Equal(t, models.StatusIssued, updated.Status)
	assert.NotNil(t, updated.IssueDate)
	assert.Equal(t, "2024-01-15", updated.IssueDate.Format("2006-01-02"))
	assert.Nil(t, updated.ReceivedDate)
}

func TestUpdateAssetKeepsExistingImages(t *testing.T) {
	db := setupTestDB()
	assetService := newTestAssetService(db)

	created, err := assetService.Create(validAssetInput(),
		[]services.FileUpload{{Name: "a.jpg", Mime: "image/jpeg", Data: []byte("a")}}, nil, 0)
	assert.NoError(t, err)
	assert.Len(t, created.Images, 1)

	updated, err := assetService.Update(created.ID, validAssetInput(),
		[]services.FileUpload{{Name: "b.jpg", Mime: "image/jpeg", Data: []byte("b")}}, nil, 0)
	assert.NoError(t, err)
	assert.Len(t, updated.Images, 2)

	// Primary stays with the first stored image.
	assert.True(t, updated.Images[0].IsPrimary)
	assert.False(t, updated.Images[1].IsPrimary)
}

func TestUpdateAssetReplacesDocument(t *testing.T) {
	db := setupTestDB()
	assetService := newTestAssetService(db)

	created, err := assetService.Create(validAssetInput(), nil,
		&services.FileUpload{Name: "old.doc", Data: []byte("old")}, 0)
	assert.NoError(t, err)
	assert.Len(t, created.Documents, 1)
	assert.Equal(t, models.DocumentTypeDoc, created.Documents[0].DocumentType)

	updated, err := assetService.Update(created.ID, validAssetInput(), nil,
		&services.FileUpload{Name: "new.docx", Data: []byte("new")}, 0)
	assert.NoError(t, err)

	// Single active document: the old row is gone.
	assert.Len(t, updated.Documents, 1)
	assert.Equal(t, "new.docx", updated.Documents[0].DocumentName)
	assert.Equal(t, models.DocumentTypeDocx, updated.Documents[0].DocumentType)

	var count int64
	db.Model(&models.AssetDocument{}).Where("asset_id = ?", created.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateAssetNotFound(t *testing.T) {
	db := setupTestDB()
	assetService := newTestAssetService(db)

	_, err := assetService.Update(9999, validAssetInput(), nil, nil, 0)
	var notFoundErr *services.NotFoundError
	assert.True(t, errors.As(err, &notFoundErr))
}

func TestDeleteAssetRemovesAttachmentsAndKeepsHistory(t *testing.T) {
	db := setupTestDB()
	assetService := newTestAssetService(db)

	created, err := assetService.Create(validAssetInput(),
		[]services.FileUpload{{Name: "a.jpg", Mime: "image/jpeg", Data: []byte("a")}},
		&services.FileUpload{Name: "doc.pdf", Data: []byte("doc")}, 0)
	assert.NoError(t, err)

	assert.NoError(t, assetService.Delete(created.ID, 0))

	_, err = assetService.Get(created.ID)
	var notFoundErr *services.NotFoundError
	assert.True(t, errors.As(err, &notFoundErr))

	var imageCount, documentCount int64
	db.Model(&models.AssetImage{}).Where("asset_id = ?", created.ID).Count(&imageCount)
	db.Model(&models.AssetDocument{}).Where("asset_id = ?", created.ID).Count(&documentCount)
	assert.Equal(t, int64(0), imageCount)
	assert.Equal(t, int64(0), documentCount)

	// The audit trail outlives the asset, including the DELETE entry
	// with its pre-deletion snapshot.
	var entries []models.AssetHistory
	db.Where("asset_id = ?", created.ID).Order("created_at DESC, id DESC").Find(&entries)
	assert.Len(t, entries, 2)
	assert.Equal(t, models.ActionDelete, entries[0].ActionType)
	assert.NotEmpty(t, entries[0].OldValues)
	assert.Empty(t, entries[0].NewValues)
}

func TestDeleteAssetNotFound(t *testing.T) {
	db := setupTestDB()
	assetService := newTestAssetService(db)

	err := assetService.Delete(12345, 0)
	var notFoundErr *services.NotFoundError
	assert.True(t, errors.As(err, &notFoundErr))
}
