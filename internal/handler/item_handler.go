package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "secondchance/internal/errors"
	"secondchance/internal/model"
	"secondchance/internal/service"
)

// UploadField is the multipart field carrying an item image.
const UploadField = "file"

// ItemHandler handles marketplace item endpoints.
type ItemHandler struct {
	itemService service.ItemService
	maxUpload   int64
}

// NewItemHandler creates a new item handler. maxUpload caps multipart
// request bodies in bytes.
func NewItemHandler(itemService service.ItemService, maxUpload int64) *ItemHandler {
	return &ItemHandler{itemService: itemService, maxUpload: maxUpload}
}

// CreateItemRequest represents a new listing, sent as JSON or multipart form.
type CreateItemRequest struct {
	Name        string `json:"name" form:"name" validate:"required"`
	Category    string `json:"category" form:"category"`
	Condition   string `json:"condition" form:"condition"`
	PostedBy    string `json:"posted_by" form:"posted_by"`
	Zipcode     string `json:"zipcode" form:"zipcode"`
	AgeDays     int    `json:"age_days" form:"age_days" validate:"gte=0"`
	Description string `json:"description" form:"description"`
}

// UpdateItemRequest lists the mutable item fields. Empty fields are kept.
type UpdateItemRequest struct {
	Category    string `json:"category"`
	Condition   string `json:"condition"`
	AgeDays     int    `json:"age_days" validate:"gte=0"`
	Description string `json:"description"`
}

// UpdateItemResponse is returned after an item update.
type UpdateItemResponse struct {
	Message     string      `json:"message"`
	UpdatedItem *model.Item `json:"updatedItem"`
}

// List godoc
// @Summary List all items
// @Tags items
// @Produce json
// @Success 200 {array} model.Item
// @Failure 500 {object} errors.ErrorResponse
// @Router /secondchance/items [get]
func (h *ItemHandler) List(c echo.Context) error {
	items, err := h.itemService.ListItems(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, nonNil(items))
}

// Get godoc
// @Summary Get item by ID
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} model.Item
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /secondchance/items/{id} [get]
func (h *ItemHandler) Get(c echo.Context) error {
	item, err := h.itemService.GetItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// Create godoc
// @Summary Create an item
// @Description Accepts JSON, or multipart form data with an optional "file" image.
// @Tags items
// @Accept json,mpfd
// @Produce json
// @Param request body CreateItemRequest true "Item data"
// @Param file formData file false "Item image"
// @Success 201 {object} model.Item
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /secondchance/items [post]
func (h *ItemHandler) Create(c echo.Context) error {
	multipart := strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
	if multipart && h.maxUpload > 0 {
		c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxUpload)
	}

	var req CreateItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var upload *service.Upload
	if multipart {
		u, err := readUpload(c)
		if err != nil {
			return respondError(err)
		}
		upload = u
	}

	item, err := h.itemService.CreateItem(c.Request().Context(), &model.Item{
		Name:        req.Name,
		Category:    req.Category,
		Condition:   req.Condition,
		PostedBy:    req.PostedBy,
		Zipcode:     req.Zipcode,
		AgeDays:     req.AgeDays,
		Description: req.Description,
	}, upload)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

// readUpload returns the optional image part, or nil when none was sent.
func readUpload(c echo.Context) (*service.Upload, error) {
	fh, err := c.FormFile(UploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperrors.Validation("invalid upload: %v", err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.Validation("invalid upload: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.Validation("invalid upload: %v", err)
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		contentType = http.DetectContentType(data)
	}
	return &service.Upload{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

// Update godoc
// @Summary Update an item
// @Tags items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body UpdateItemRequest true "Fields to change"
// @Success 200 {object} UpdateItemResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /secondchance/items/{id} [put]
func (h *ItemHandler) Update(c echo.Context) error {
	var req UpdateItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.itemService.UpdateItem(c.Request().Context(), c.Param("id"), model.ItemUpdate{
		Category:    req.Category,
		Condition:   req.Condition,
		AgeDays:     req.AgeDays,
		Description: req.Description,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, UpdateItemResponse{Message: "Update successful", UpdatedItem: item})
}

// Delete godoc
// @Summary Delete an item
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /secondchance/items/{id} [delete]
func (h *ItemHandler) Delete(c echo.Context) error {
	if err := h.itemService.DeleteItem(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Delete successful"})
}

// Search godoc
// @Summary Search items
// @Tags items
// @Produce json
// @Param name query string false "Case-insensitive name fragment"
// @Param category query string false "Exact category"
// @Param condition query string false "Exact condition"
// @Param age_years query int false "Maximum age in years"
// @Success 200 {array} model.Item
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /secondchance/search [get]
func (h *ItemHandler) Search(c echo.Context) error {
	filter := model.ItemFilter{
		Name:      strings.TrimSpace(c.QueryParam("name")),
		Category:  c.QueryParam("category"),
		Condition: c.QueryParam("condition"),
	}
	if raw := c.QueryParam("age_years"); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(apperrors.Validation("age_years must be an integer"))
		}
		filter.MaxAgeYears = &years
	}

	items, err := h.itemService.SearchItems(c.Request().Context(), filter)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, nonNil(items))
}

// Image godoc
// @Summary Download an item image
// @Tags items
// @Produce octet-stream
// @Param name path string true "Image file name"
// @Success 200 {file} binary
// @Failure 404 {object} errors.ErrorResponse
// @Router /images/{name} [get]
func (h *ItemHandler) Image(c echo.Context) error {
	data, contentType, err := h.itemService.GetImage(c.Request().Context(), c.Param("name"))
	if err != nil {
		return respondError(err)
	}
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(http.StatusOK, contentType, data)
}

func nonNil(items []model.Item) []model.Item {
	if items == nil {
		return []model.Item{}
	}
	return items
}
