package main

import (
	"testing"

	"assettrack-backend/models"
	"assettrack-backend/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStockEntryRoundTrip(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	input := validStockInput()
	input.EntryDate = "2024-03-01"
	input.PurchasePrice = "12.50"
	input.SellingPrice = "19.99"
	input.BatchNumber = "B-2024-03"
	input.RackNumber = "R12"
	input.Description = "M8 hex bolts"

	entry, err := svc.CreateEntry(input, nil)
	require.NoError(t, err)
	require.NotZero(t, entry.ID)

	assert.Equal(t, "Bolts", entry.ProductName)
	assert.Equal(t, "Hardware", entry.Category)
	assert.Equal(t, "Acme Supplies", entry.Supplier)
	assert.Equal(t, 100.0, entry.Quantity)
	assert.Equal(t, "Pieces", entry.Unit)
	assert.True(t, entry.PurchasePrice.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, entry.SellingPrice.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, "B-2024-03", entry.BatchNumber)
	require.NotNil(t, entry.EntryDate)
	assert.Equal(t, "2024-03-01", entry.EntryDate.Format("2006-01-02"))

	// Preparer and approver fall back to the configured default actor.
	require.NotNil(t, entry.Preparer)
	assert.Equal(t, "System Admin", entry.Preparer.FullName)
	require.NotNil(t, entry.Approver)
	assert.Equal(t, entry.Preparer.ID, entry.Approver.ID)
}

func TestCreateStockEntryValidationNamesMissingFields(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	_, err := svc.CreateEntry(services.StockInput{ProductName: "Bolts"}, nil)
	require.Error(t, err)

	var vErr *services.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{"category", "supplier", "unit", "warehouse", "quantity"}, vErr.Fields)
}

func TestCreateStockEntryRejectsNonNumericQuantity(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	input := validStockInput()
	input.Quantity = "a lot"

	_, err := svc.CreateEntry(input, nil)
	require.Error(t, err)

	var vErr *services.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"quantity"}, vErr.Fields)
}

func TestCreateStockEntryRejectsNegativePrice(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	input := validStockInput()
	input.PurchasePrice = "-5"

	_, err := svc.CreateEntry(input, nil)
	require.Error(t, err)

	var vErr *services.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"purchase_price"}, vErr.Fields)
}

func TestCurrentStockDerivedFromIssues(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	entry, err := svc.CreateEntry(validStockInput(), nil)
	require.NoError(t, err)

	current, err := svc.CurrentStock(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, current)

	_, err = svc.Issue(entry.ID, 40)
	require.NoError(t, err)

	current, err = svc.CurrentStock(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 60.0, current)

	_, err = svc.Issue(entry.ID, 60)
	require.NoError(t, err)

	current, err = svc.CurrentStock(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, current)
}

func TestIssueBeyondRemainingAllowedByDefault(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	entry, err := svc.CreateEntry(validStockInput(), nil)
	require.NoError(t, err)

	_, err = svc.Issue(entry.ID, 150)
	require.NoError(t, err)

	current, err := svc.CurrentStock(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, -50.0, current)
}

func TestIssueBeyondRemainingRejectedWhenDisallowed(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, false)

	entry, err := svc.CreateEntry(validStockInput(), nil)
	require.NoError(t, err)

	_, err = svc.Issue(entry.ID, 150)
	require.Error(t, err)

	var vErr *services.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"quantity"}, vErr.Fields)

	// The rejected issuance left no ledger row behind.
	current, err := svc.CurrentStock(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, current)

	_, err = svc.Issue(entry.ID, 100)
	require.NoError(t, err)
}

func TestIssueRejectsNonPositiveQuantity(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	entry, err := svc.CreateEntry(validStockInput(), nil)
	require.NoError(t, err)

	for _, quantity := range []float64{0, -5} {
		_, err = svc.Issue(entry.ID, quantity)
		require.Error(t, err)

		var vErr *services.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, []string{"quantity"}, vErr.Fields)
	}
}

func TestIssueUnknownEntryNotFound(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	_, err := svc.Issue(9999, 1)
	require.Error(t, err)

	var nfErr *services.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "stock entry", nfErr.Resource)
}

func TestGetStockEntryIncludesIssueLog(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	entry, err := svc.CreateEntry(validStockInput(), nil)
	require.NoError(t, err)

	_, err = svc.Issue(entry.ID, 10)
	require.NoError(t, err)
	_, err = svc.Issue(entry.ID, 25)
	require.NoError(t, err)

	detail, err := svc.GetEntry(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 65.0, detail.CurrentStock)
	require.Len(t, detail.Issues, 2)
	assert.Equal(t, 10.0, detail.Issues[0].Quantity)
	assert.Equal(t, 25.0, detail.Issues[1].Quantity)
	assert.Equal(t, models.IssueStatusIssued, detail.Issues[0].Status)
}

func TestCreateStockEntryStoresBill(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	bill := &services.FileUpload{
		Name: "invoice-0042.pdf",
		Mime: "application/pdf",
		Data: []byte("%PDF-1.4 invoice"),
	}
	entry, err := svc.CreateEntry(validStockInput(), bill)
	require.NoError(t, err)

	var stored models.StockEntry
	require.NoError(t, db.First(&stored, entry.ID).Error)
	assert.True(t, stored.HasBill())
	assert.Equal(t, "invoice-0042.pdf", stored.BillFilename)
	assert.Equal(t, []byte("%PDF-1.4 invoice"), stored.BillPDF)
	assert.Equal(t, int64(len(bill.Data)), stored.BillFilesize)
}

func TestUpdateStockEntryKeepsBillWithoutFlag(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	bill := &services.FileUpload{Name: "invoice.pdf", Mime: "application/pdf", Data: []byte("%PDF-1.4")}
	entry, err := svc.CreateEntry(validStockInput(), bill)
	require.NoError(t, err)

	input := validStockInput()
	input.Quantity = "250"
	_, err = svc.UpdateEntry(entry.ID, input, nil, false)
	require.NoError(t, err)

	var stored models.StockEntry
	require.NoError(t, db.First(&stored, entry.ID).Error)
	assert.Equal(t, 250.0, stored.Quantity)
	// No new file and no clear flag leaves the stored bill untouched.
	assert.True(t, stored.HasBill())
	assert.Equal(t, "invoice.pdf", stored.BillFilename)
}

func TestUpdateStockEntryReplacesBill(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	first := &services.FileUpload{Name: "first.pdf", Mime: "application/pdf", Data: []byte("%PDF-1.4 one")}
	entry, err := svc.CreateEntry(validStockInput(), first)
	require.NoError(t, err)

	second := &services.FileUpload{Name: "second.pdf", Mime: "application/pdf", Data: []byte("%PDF-1.4 two two")}
	_, err = svc.UpdateEntry(entry.ID, validStockInput(), second, false)
	require.NoError(t, err)

	var stored models.StockEntry
	require.NoError(t, db.First(&stored, entry.ID).Error)
	assert.Equal(t, "second.pdf", stored.BillFilename)
	assert.Equal(t, []byte("%PDF-1.4 two two"), stored.BillPDF)
	assert.Equal(t, int64(len(second.Data)), stored.BillFilesize)
}

func TestUpdateStockEntryClearsBillOnExplicitFlag(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	bill := &services.FileUpload{Name: "invoice.pdf", Mime: "application/pdf", Data: []byte("%PDF-1.4")}
	entry, err := svc.CreateEntry(validStockInput(), bill)
	require.NoError(t, err)

	_, err = svc.UpdateEntry(entry.ID, validStockInput(), nil, true)
	require.NoError(t, err)

	var stored models.StockEntry
	require.NoError(t, db.First(&stored, entry.ID).Error)
	assert.False(t, stored.HasBill())
	assert.Empty(t, stored.BillFilename)
	assert.Empty(t, stored.BillPDF)
	assert.Zero(t, stored.BillFilesize)
}

func TestUpdateStockEntryNotFound(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	_, err := svc.UpdateEntry(9999, validStockInput(), nil, false)
	require.Error(t, err)

	var nfErr *services.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestDeleteStockEntryRemovesIssues(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	entry, err := svc.CreateEntry(validStockInput(), nil)
	require.NoError(t, err)
	_, err = svc.Issue(entry.ID, 5)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntry(entry.ID))

	var entries int64
	db.Model(&models.StockEntry{}).Count(&entries)
	assert.Zero(t, entries)

	var issues int64
	db.Model(&models.StockIssue{}).Count(&issues)
	assert.Zero(t, issues)
}

func TestDeleteStockEntryNotFound(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	err := svc.DeleteEntry(9999)
	require.Error(t, err)

	var nfErr *services.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestListStockEntriesFiltersByCategoryAndWarehouse(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	mk := func(product, category, warehouse string) {
		input := validStockInput()
		input.ProductName = product
		input.Category = category
		input.Warehouse = warehouse
		_, err := svc.CreateEntry(input, nil)
		require.NoError(t, err)
	}
	mk("Bolts", "Hardware", "Main")
	mk("Nuts", "Hardware", "Annex")
	mk("Paper", "Office", "Main")

	entries, total, err := svc.List(svc.Filter("Hardware", "", ""), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, entries, 2)

	entries, total, err = svc.List(svc.Filter("Hardware", "Main", ""), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bolts", entries[0].ProductName)
}

func TestListStockEntriesFreeTextSearch(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	input := validStockInput()
	input.Description = "Stainless M8 fasteners"
	_, err := svc.CreateEntry(input, nil)
	require.NoError(t, err)

	other := validStockInput()
	other.ProductName = "Paper"
	other.Category = "Office"
	_, err = svc.CreateEntry(other, nil)
	require.NoError(t, err)

	entries, total, err := svc.List(svc.Filter("", "", "stainless"), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bolts", entries[0].ProductName)
}

func TestStockReadsExcludeBillPayload(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	bill := &services.FileUpload{Name: "invoice.pdf", Mime: "application/pdf", Data: []byte("%PDF-1.4 invoice")}
	entry, err := svc.CreateEntry(validStockInput(), bill)
	require.NoError(t, err)

	// The create read-back carries bill metadata without the payload.
	assert.True(t, entry.HasBill())
	assert.Empty(t, entry.BillPDF)

	entries, _, err := svc.List(svc.Filter("", "", ""), 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].HasBill())
	assert.Equal(t, "invoice.pdf", entries[0].BillFilename)
	assert.Empty(t, entries[0].BillPDF)

	detail, err := svc.GetEntry(entry.ID)
	require.NoError(t, err)
	assert.True(t, detail.HasBill())
	assert.Empty(t, detail.BillPDF)

	// The download path is the only one returning the payload itself.
	payload, err := svc.BillPayload(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 invoice"), payload.BillPDF)
}

func TestBillPayloadMissingBillNotFound(t *testing.T) {
	db := setupTestDB()
	svc := newTestStockService(db, true)

	entry, err := svc.CreateEntry(validStockInput(), nil)
	require.NoError(t, err)

	_, err = svc.BillPayload(entry.ID)
	require.Error(t, err)

	var nfErr *services.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "bill", nfErr.Resource)
}
