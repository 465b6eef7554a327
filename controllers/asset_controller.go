package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"assettrack-backend/services"
	"assettrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AssetController handles the HTTP surface of the asset collection.
type AssetController struct {
	DB          *gorm.DB
	Assets      *services.AssetService
	Attachments services.Attachments
}

// NewAssetController creates a new asset controller.
func NewAssetController(db *gorm.DB, assets *services.AssetService, attachments services.Attachments) *AssetController {
	return &AssetController{DB: db, Assets: assets, Attachments: attachments}
}

// readUpload buffers one multipart file fully into memory.
func readUpload(fh *multipart.FileHeader) (services.FileUpload, error) {
	file, err := fh.Open()
	if err != nil {
		return services.FileUpload{}, &services.AttachmentError{Op: "open", Err: err}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return services.FileUpload{}, &services.AttachmentError{Op: "read", Err: err}
	}

	return services.FileUpload{
		Name: fh.Filename,
		Mime: fh.Header.Get("Content-Type"),
		Data: data,
	}, nil
}

// readAssetFiles collects the "images" files and the single "document"
// file from a multipart request, if any.
func readAssetFiles(c *fiber.Ctx) ([]services.FileUpload, *services.FileUpload, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		// Plain JSON request, no files attached.
		return nil, nil, nil
	}

	var images []services.FileUpload
	for _, fh := range form.File["images"] {
		upload, err := readUpload(fh)
		if err != nil {
			return nil, nil, err
		}
		images = append(images, upload)
	}

	var document *services.FileUpload
	if files := form.File["document"]; len(files) > 0 {
		upload, err := readUpload(files[0])
		if err != nil {
			return nil, nil, err
		}
		document = &upload
	}

	return images, document, nil
}

// parseID reads the :id path parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// CreateAsset creates an asset from a JSON or multipart request.
func (ac *AssetController) CreateAsset(c *fiber.Ctx) error {
	var input services.AssetInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid request body",
		})
	}

	images, document, err := readAssetFiles(c)
	if err != nil {
		return respondError(c, "controllers", "CreateAsset", err)
	}

	asset, err := ac.Assets.Create(input, images, document, utils.ActorFromRequest(c))
	if err != nil {
		return respondError(c, "controllers", "CreateAsset", err)
	}

	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: "Asset created",
		Data:    asset,
	})
}

// UpdateAsset replaces an asset's fields and adds any supplied attachments.
func (ac *AssetController) UpdateAsset(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid asset ID",
		})
	}

	var input services.AssetInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid request body",
		})
	}

	images, document, err := readAssetFiles(c)
	if err != nil {
		return respondError(c, "controllers", "UpdateAsset", err)
	}

	asset, err := ac.Assets.Update(id, input, images, document, utils.ActorFromRequest(c))
	if err != nil {
		return respondError(c, "controllers", "UpdateAsset", err)
	}

	return c.JSON(Response{
		Success: true,
		Message: "Asset updated",
		Data:    asset,
	})
}

// DeleteAsset removes an asset with its attachments, leaving the audit trail.
func (ac *AssetController) DeleteAsset(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid asset ID",
		})
	}

	if err := ac.Assets.Delete(id, utils.ActorFromRequest(c)); err != nil {
		return respondError(c, "controllers", "DeleteAsset", err)
	}

	return c.JSON(Response{
		Success: true,
		Message: "Asset deleted",
	})
}

// GetAsset returns one asset with attachments metadata and history.
func (ac *AssetController) GetAsset(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid asset ID",
		})
	}

	detail, err := ac.Assets.Get(id)
	if err != nil {
		return respondError(c, "controllers", "GetAsset", err)
	}

	return c.JSON(Response{
		Success: true,
		Data:    detail,
	})
}

// GetAssets returns the filtered, paginated asset list.
func (ac *AssetController) GetAssets(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := ac.Assets.Filter(c.Query("status"), c.Query("device_status"), c.Query("search"))
	assets, total, err := ac.Assets.List(filter, page, limit)
	if err != nil {
		return respondError(c, "controllers", "GetAssets", err)
	}

	return c.JSON(Response{
		Success:    true,
		Data:       assets,
		Pagination: newPagination(page, limit, total),
	})
}

// GetAssetHistory returns the asset's audit trail, newest first.
func (ac *AssetController) GetAssetHistory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid asset ID",
		})
	}

	detail, err := ac.Assets.Get(id)
	if err != nil {
		return respondError(c, "controllers", "GetAssetHistory", err)
	}

	return c.JSON(Response{
		Success: true,
		Data:    detail.History,
	})
}

// DownloadAssetImage streams one image payload with its stored mime type.
func (ac *AssetController) DownloadAssetImage(c *fiber.Ctx) error {
	assetID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid asset ID",
		})
	}
	imageID, err := parseID(c, "imageId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid image ID",
		})
	}

	image, err := ac.Attachments.ImagePayload(ac.DB, assetID, imageID)
	if err != nil {
		return respondError(c, "controllers", "DownloadAssetImage", err)
	}

	c.Set(fiber.HeaderContentType, image.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", image.ImageName))
	return c.Send(image.ImageData)
}

// DownloadAssetDocument streams the asset's active document payload.
func (ac *AssetController) DownloadAssetDocument(c *fiber.Ctx) error {
	assetID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid asset ID",
		})
	}

	document, err := ac.Attachments.DocumentPayload(ac.DB, assetID)
	if err != nil {
		return respondError(c, "controllers", "DownloadAssetDocument", err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", document.DocumentName))
	return c.Send(document.DocumentData)
}
