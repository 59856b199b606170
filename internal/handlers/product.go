package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"eshop-backend/internal/filestore"
	"eshop-backend/internal/media"
	"eshop-backend/internal/models"
)

type ProductHandler struct {
	DB       *gorm.DB
	Sync     *media.Synchronizer
	Files    filestore.Store
	Producer Publisher
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	q := h.DB.Model(&models.Product{})
	if category := c.QueryParam("category"); category != "" {
		id, err := strconv.Atoi(category)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category filter")
		}
		q = q.Where("category_id = ?", id)
	}

	var products []models.Product
	if err := q.Order("id ASC").Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) CountProducts(c echo.Context) error {
	var count int64
	if err := h.DB.Model(&models.Product{}).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"product_count": count})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no image in the request")
	}

	categoryID, err := strconv.Atoi(c.FormValue("category_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	var category models.Category
	if err := h.DB.First(&category, categoryID).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
	}

	primary := form.File["image"]
	if len(primary) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no image in the request")
	}
	headers := append([]*multipart.FileHeader{}, primary...)
	headers = append(headers, form.File["images"]...)
	if err := checkImageTypes(headers); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	imageURL, err := h.saveUpload(c, primary[0])
	if err != nil {
		return err
	}

	var galleryURLs []string
	for _, fh := range form.File["images"] {
		url, err := h.saveUpload(c, fh)
		if err != nil {
			return err
		}
		galleryURLs = append(galleryURLs, url)
	}

	price, _ := strconv.ParseFloat(c.FormValue("price"), 64)
	countInStock, _ := strconv.Atoi(c.FormValue("count_in_stock"))
	rating, _ := strconv.ParseFloat(c.FormValue("rating"), 64)
	isFeatured, _ := strconv.ParseBool(c.FormValue("is_featured"))

	product := models.Product{
		Name:            c.FormValue("name"),
		Description:     c.FormValue("description"),
		RichDescription: c.FormValue("rich_description"),
		Image:           imageURL,
		Images:          galleryURLs,
		Brand:           c.FormValue("brand"),
		Price:           price,
		CategoryID:      uint(categoryID),
		CountInStock:    uint(countInStock),
		Rating:          rating,
		IsFeatured:      isFeatured,
		CreatedAt:       time.Now(),
	}
	if err := h.DB.Create(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(product.ID), map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct reconciles the stored product against the request: metadata
// fields from the form, a new primary under "image", new gallery files under
// "images", and the retained gallery URLs as "images" form values. Everything
// media-related runs through the synchronizer.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if v := c.FormValue("category_id"); v != "" {
		categoryID, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
		}
		var category models.Category
		if err := h.DB.First(&category, categoryID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
		}
	}

	req := media.Request{
		ProductID: uint(id),
		Apply:     applyProductForm(c),
	}

	form, _ := c.MultipartForm()
	var open []multipart.File
	defer func() {
		for _, f := range open {
			f.Close()
		}
	}()

	if form != nil {
		var headers []*multipart.FileHeader
		if fhs := form.File["image"]; len(fhs) > 0 {
			headers = append(headers, fhs[0])
		}
		headers = append(headers, form.File["images"]...)
		if err := checkImageTypes(headers); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		if fhs := form.File["image"]; len(fhs) > 0 {
			f, err := fhs[0].Open()
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err)
			}
			open = append(open, f)
			req.Primary = &media.Upload{
				Name:        fhs[0].Filename,
				ContentType: fhs[0].Header.Get("Content-Type"),
				Data:        f,
			}
		}
		for _, fh := range form.File["images"] {
			f, err := fh.Open()
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err)
			}
			open = append(open, f)
			req.Gallery = append(req.Gallery, media.Upload{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        f,
			})
		}
		if retained, ok := form.Value["images"]; ok {
			req.Retained = retained
			req.GallerySupplied = true
		}
	}
	if len(req.Gallery) > 0 {
		req.GallerySupplied = true
	}

	product, err := h.Sync.Sync(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		case errors.Is(err, media.ErrUpload):
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(product.ID), map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err := h.DB.Delete(&models.Product{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	// The record is gone; its files are unreferenced now, so removal is
	// best-effort hygiene.
	ctx := c.Request().Context()
	for _, url := range append([]string{product.Image}, product.Images...) {
		name, ok := filestore.Filename(url)
		if !ok {
			continue
		}
		if err := h.Files.Delete(ctx, name); err != nil {
			c.Logger().Errorf("deleting product file %s: %v", name, err)
		}
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) saveUpload(c echo.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, err)
	}
	defer f.Close()

	url, err := h.Files.Save(c.Request().Context(), filestore.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        f,
	})
	if err != nil {
		if errors.Is(err, filestore.ErrInvalidType) {
			return "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return "", echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return url, nil
}

func checkImageTypes(headers []*multipart.FileHeader) error {
	for _, fh := range headers {
		contentType := fh.Header.Get("Content-Type")
		if _, ok := filestore.FileTypes[contentType]; !ok {
			return fmt.Errorf("invalid image type: %s", contentType)
		}
	}
	return nil
}

// applyProductForm copies the metadata fields present in the form onto the
// product. Absent fields keep their stored values.
func applyProductForm(c echo.Context) func(*models.Product) {
	return func(p *models.Product) {
		if v := c.FormValue("name"); v != "" {
			p.Name = v
		}
		if v := c.FormValue("description"); v != "" {
			p.Description = v
		}
		if v := c.FormValue("rich_description"); v != "" {
			p.RichDescription = v
		}
		if v := c.FormValue("brand"); v != "" {
			p.Brand = v
		}
		if v := c.FormValue("price"); v != "" {
			if price, err := strconv.ParseFloat(v, 64); err == nil {
				p.Price = price
			}
		}
		if v := c.FormValue("category_id"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				p.CategoryID = uint(id)
			}
		}
		if v := c.FormValue("count_in_stock"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				p.CountInStock = uint(n)
			}
		}
		if v := c.FormValue("rating"); v != "" {
			if r, err := strconv.ParseFloat(v, 64); err == nil {
				p.Rating = r
			}
		}
		if v := c.FormValue("is_featured"); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				p.IsFeatured = b
			}
		}
	}
}
