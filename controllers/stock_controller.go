package controllers

import (
	"fmt"

	"assettrack-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StockController handles the HTTP surface of the stock collection.
type StockController struct {
	DB     *gorm.DB
	Stocks *services.StockService
}

// NewStockController creates a new stock controller.
func NewStockController(db *gorm.DB, stocks *services.StockService) *StockController {
	return &StockController{DB: db, Stocks: stocks}
}

// UpdateStockRequest wraps the scalar input with the explicit bill-clear
// flag; absence of a new bill alone never deletes a stored one.
type UpdateStockRequest struct {
	services.StockInput
	ClearBill bool `json:"clear_bill" form:"clear_bill"`
}

// IssueStockRequest is one issuance against a stock entry.
type IssueStockRequest struct {
	Quantity float64 `json:"quantity" form:"quantity"`
}

// readBillFile reads the optional "bill" multipart file.
func readBillFile(c *fiber.Ctx) (*services.FileUpload, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}

	files := form.File["bill"]
	if len(files) == 0 {
		return nil, nil
	}

	upload, err := readUpload(files[0])
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

// CreateStock creates a stock entry with its optional bill.
func (sc *StockController) CreateStock(c *fiber.Ctx) error {
	var input services.StockInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid request body",
		})
	}

	bill, err := readBillFile(c)
	if err != nil {
		return respondError(c, "controllers", "CreateStock", err)
	}

	entry, err := sc.Stocks.CreateEntry(input, bill)
	if err != nil {
		return respondError(c, "controllers", "CreateStock", err)
	}

	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: "Stock entry created",
		Data:    entry,
	})
}

// UpdateStock replaces a stock entry's fields; the bill is replaced when a
// new file is supplied or cleared when the flag is set.
func (sc *StockController) UpdateStock(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid stock entry ID",
		})
	}

	var req UpdateStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid request body",
		})
	}

	bill, err := readBillFile(c)
	if err != nil {
		return respondError(c, "controllers", "UpdateStock", err)
	}

	entry, err := sc.Stocks.UpdateEntry(id, req.StockInput, bill, req.ClearBill)
	if err != nil {
		return respondError(c, "controllers", "UpdateStock", err)
	}

	return c.JSON(Response{
		Success: true,
		Message: "Stock entry updated",
		Data:    entry,
	})
}

// DeleteStock removes a stock entry with its issuance rows and bill.
func (sc *StockController) DeleteStock(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid stock entry ID",
		})
	}

	if err := sc.Stocks.DeleteEntry(id); err != nil {
		return respondError(c, "controllers", "DeleteStock", err)
	}

	return c.JSON(Response{
		Success: true,
		Message: "Stock entry deleted",
	})
}

// GetStock returns one entry with its derived stock and issuance log.
func (sc *StockController) GetStock(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid stock entry ID",
		})
	}

	detail, err := sc.Stocks.GetEntry(id)
	if err != nil {
		return respondError(c, "controllers", "GetStock", err)
	}

	return c.JSON(Response{
		Success: true,
		Data:    detail,
	})
}

// GetStocks returns the filtered, paginated stock list.
func (sc *StockController) GetStocks(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := sc.Stocks.Filter(c.Query("category"), c.Query("warehouse"), c.Query("search"))
	entries, total, err := sc.Stocks.List(filter, page, limit)
	if err != nil {
		return respondError(c, "controllers", "GetStocks", err)
	}

	return c.JSON(Response{
		Success:    true,
		Data:       entries,
		Pagination: newPagination(page, limit, total),
	})
}

// IssueStock appends an issuance row against a stock entry.
func (sc *StockController) IssueStock(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid stock entry ID",
		})
	}

	var req IssueStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid request body",
		})
	}

	issue, err := sc.Stocks.Issue(id, req.Quantity)
	if err != nil {
		return respondError(c, "controllers", "IssueStock", err)
	}

	current, err := sc.Stocks.CurrentStock(id)
	if err != nil {
		return respondError(c, "controllers", "IssueStock", err)
	}

	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: "Stock issued",
		Data: fiber.Map{
			"issue":         issue,
			"current_stock": current,
		},
	})
}

// DownloadStockBill streams the entry's bill attachment.
func (sc *StockController) DownloadStockBill(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid stock entry ID",
		})
	}

	entry, err := sc.Stocks.BillPayload(id)
	if err != nil {
		return respondError(c, "controllers", "DownloadStockBill", err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", entry.BillFilename))
	return c.Send(entry.BillPDF)
}
