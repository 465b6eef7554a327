package controllers

import (
	"errors"

	"assettrack-backend/services"
	"assettrack-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// newPagination computes the page block for a list response.
func newPagination(page, limit int, total int64) *Pagination {
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return &Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// respondError maps a service error onto the envelope: validation failures
// are 400, missing records 404, everything else a logged 500.
func respondError(c *fiber.Ctx, module, funcName string, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: validationErr.Error(),
		})
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		return c.Status(fiber.StatusNotFound).JSON(Response{
			Success: false,
			Message: notFoundErr.Error(),
		})
	}

	utils.LogError(module, funcName, "request failed", err)
	return c.Status(fiber.StatusInternalServerError).JSON(Response{
		Success: false,
		Message: err.Error(),
	})
}
