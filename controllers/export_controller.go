package controllers

import (
	"time"

	"assettrack-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// assetExportHeaders are the spreadsheet columns, in output order.
var assetExportHeaders = []string{
	"ID", "Type", "Brand", "Model Name", "Status", "Vehicle Number",
	"Serial Number", "IMEI Number", "IP Address", "GID", "Issued To",
	"Received From", "Issue Date", "Received Date", "Device Status",
	"Device Remark", "Recovery Name", "Recovery Status", "Prepared By",
	"Approved By", "Mail Date", "Replacement SN/IMEI", "Created At",
}

// formatExportDate renders an optional date cell.
func formatExportDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// formatExportUser renders an optional joined person cell.
func formatExportUser(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.FullName
}

// assetExportRow maps one joined asset onto its spreadsheet cells.
func assetExportRow(asset *models.Asset) []interface{} {
	return []interface{}{
		asset.ID,
		asset.Type.TypeName,
		asset.Brand.BrandName,
		asset.ModelName,
		asset.Status,
		asset.VehicleNumber,
		asset.SerialNumber,
		asset.ImeiNumber,
		asset.IPAddress,
		asset.GID,
		asset.IssuedTo,
		asset.ReceivedFrom,
		formatExportDate(asset.IssueDate),
		formatExportDate(asset.ReceivedDate),
		asset.DeviceStatus,
		asset.DeviceRemark,
		asset.RecoveryName,
		asset.RecoveryStatus,
		formatExportUser(asset.Preparer),
		formatExportUser(asset.Approver),
		formatExportDate(asset.MailDate),
		asset.ReplaceDeviceSNIMEI,
		asset.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ExportAssets writes the full filtered asset list as an XLSX byte stream.
// The same query filters as the list endpoint apply; pagination does not.
func (ac *AssetController) ExportAssets(c *fiber.Ctx) error {
	filter := ac.Assets.Filter(c.Query("status"), c.Query("device_status"), c.Query("search"))
	assets, err := ac.Assets.ListAll(filter)
	if err != nil {
		return respondError(c, "controllers", "ExportAssets", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for col, header := range assetExportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return respondError(c, "controllers", "ExportAssets", err)
		}
		f.SetCellValue(sheet, cell, header)
	}

	for row, asset := range assets {
		for col, value := range assetExportRow(&asset) {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return respondError(c, "controllers", "ExportAssets", err)
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return respondError(c, "controllers", "ExportAssets", err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="assets.xlsx"`)
	return c.Send(buf.Bytes())
}
