package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lovit-shop/backend/internal/es"
	"github.com/lovit-shop/backend/internal/logging"
	"github.com/lovit-shop/backend/internal/models"
	"github.com/lovit-shop/backend/internal/mykafka"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

type sizeRequest struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

type variantRequest struct {
	Color  string        `json:"color"`
	Price  float64       `json:"price"`
	Sizes  []sizeRequest `json:"sizes"`
	Images []string      `json:"images"`
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// index maintenance is best effort; the DB stays authoritative.
func (h *ProductHandler) reindex(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := es.IndexProduct(ctx, h.ES, h.Index, p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *ProductHandler) dropIndex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := es.DeleteProduct(ctx, h.ES, h.Index, id); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}
}

func newSKU() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "SKU-" + raw[:8]
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req struct {
		Title        string           `json:"title"`
		Description  string           `json:"description"`
		Category     string           `json:"category"`
		Subcategory  string           `json:"subcategory"`
		MainImage    string           `json:"mainImage"`
		SKU          string           `json:"sku"`
		Variants     []variantRequest `json:"variants"`
		IsFeatured   bool             `json:"isFeatured"`
		IsNewArrival bool             `json:"isNewArrival"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Title == "" || req.Category == "" || len(req.Variants) == 0 {
		l.Warn("product_create_error", "status", 400, "reason", "missing required fields")
		return echo.NewHTTPError(http.StatusBadRequest, "please provide title, category, and at least one variant")
	}

	variants := make([]models.Variant, 0, len(req.Variants))
	for _, v := range req.Variants {
		if len(v.Sizes) == 0 {
			l.Warn("product_create_error", "status", 400, "reason", "variant without sizes")
			return echo.NewHTTPError(http.StatusBadRequest, "at least one size is required per variant")
		}
		sizes := make([]models.Size, 0, len(v.Sizes))
		for _, s := range v.Sizes {
			sizes = append(sizes, models.Size{Label: strings.TrimSpace(s.Size), Stock: s.Stock})
		}
		variants = append(variants, models.Variant{
			Color:  v.Color,
			Price:  v.Price,
			Sizes:  sizes,
			Images: v.Images,
		})
	}

	sku := req.SKU
	if sku == "" {
		sku = newSKU()
	}

	prod := models.Product{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		MainImage:    req.MainImage,
		SKU:          sku,
		Variants:     variants,
		IsFeatured:   req.IsFeatured,
		IsNewArrival: req.IsNewArrival,
	}
	if err := h.DB.Create(&prod).Error; err != nil {
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add product to db")
	}

	h.reindex(c, &prod)
	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"title":     prod.Title,
	})

	l.Info("product_create_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Product added successfully",
		"product": prod,
	})
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	q := h.DB.Model(&models.Product{}).Preload("Variants.Sizes")

	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if sub := c.QueryParam("subcategory"); sub != "" {
		q = q.Where("LOWER(subcategory) LIKE ?", "%"+strings.ToLower(sub)+"%")
	}
	if search := c.QueryParam("search"); search != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	minPrice := c.QueryParam("minPrice")
	maxPrice := c.QueryParam("maxPrice")
	if minPrice != "" || maxPrice != "" {
		sub := h.DB.Model(&models.Variant{}).Select("product_id")
		if v, err := strconv.ParseFloat(minPrice, 64); err == nil {
			sub = sub.Where("price >= ?", v)
		}
		if v, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			sub = sub.Where("price <= ?", v)
		}
		q = q.Where("id IN (?)", sub)
	}

	var products []models.Product
	if err := q.Order("created_at DESC").Find(&products).Error; err != nil {
		l.Error("product_list_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch products")
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("product_get_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var prod models.Product
	if err := h.DB.Preload("Variants.Sizes").First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("product_get_error", "status", 404, "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("product_get_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch product")
	}

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) GetRelatedProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.related")

	category := c.Param("category")
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		l.Warn("product_related_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var related []models.Product
	if err := h.DB.Preload("Variants.Sizes").
		Where("category = ? AND id <> ?", category, productID).
		Order("created_at DESC").
		Limit(6).
		Find(&related).Error; err != nil {
		l.Error("product_related_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "error fetching related products")
	}

	return c.JSON(http.StatusOK, related)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var req struct {
		Title        *string           `json:"title"`
		Description  *string           `json:"description"`
		Category     *string           `json:"category"`
		Subcategory  *string           `json:"subcategory"`
		MainImage    *string           `json:"mainImage"`
		Variants     *[]variantRequest `json:"variants"`
		IsFeatured   *bool             `json:"isFeatured"`
		IsNewArrival *bool             `json:"isNewArrival"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("product_update_error", "status", 404, "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("product_update_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch product")
	}

	if req.Title != nil {
		prod.Title = *req.Title
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	// empty strings on these two mean "leave alone", matching the
	// admin form which submits blanks for untouched dropdowns
	if req.Category != nil && strings.TrimSpace(*req.Category) != "" {
		prod.Category = *req.Category
	}
	if req.Subcategory != nil && strings.TrimSpace(*req.Subcategory) != "" {
		prod.Subcategory = *req.Subcategory
	}
	if req.MainImage != nil {
		prod.MainImage = *req.MainImage
	}
	if req.IsFeatured != nil {
		prod.IsFeatured = *req.IsFeatured
	}
	if req.IsNewArrival != nil {
		prod.IsNewArrival = *req.IsNewArrival
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.Variants != nil {
			variants := sanitizeVariants(*req.Variants)
			if len(variants) == 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "at least one variant is required")
			}

			var oldVariantIDs []uint
			if err := tx.Model(&models.Variant{}).
				Where("product_id = ?", prod.ID).
				Pluck("id", &oldVariantIDs).Error; err != nil {
				return err
			}
			if len(oldVariantIDs) > 0 {
				if err := tx.Where("variant_id IN ?", oldVariantIDs).Delete(&models.Size{}).Error; err != nil {
					return err
				}
				if err := tx.Where("product_id = ?", prod.ID).Delete(&models.Variant{}).Error; err != nil {
					return err
				}
			}
			prod.Variants = variants
		}
		return tx.Save(&prod).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		l.Error("product_update_error", "status", 500, "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update product")
	}

	var updated models.Product
	if err := h.DB.Preload("Variants.Sizes").First(&updated, prod.ID).Error; err != nil {
		l.Error("product_update_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch product")
	}

	h.reindex(c, &updated)
	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": updated.ID,
		"title":     updated.Title,
	})

	l.Info("product_update_success", "product_id", updated.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product updated successfully",
		"product": updated,
	})
}

// sanitizeVariants drops incomplete variants and empty sizes the same way
// the admin console's payload is cleaned: a variant needs a color and a
// price, a size needs a label; missing stock counts as zero.
func sanitizeVariants(reqs []variantRequest) []models.Variant {
	variants := make([]models.Variant, 0, len(reqs))
	for _, v := range reqs {
		if v.Color == "" || v.Price == 0 {
			continue
		}
		sizes := make([]models.Size, 0, len(v.Sizes))
		for _, s := range v.Sizes {
			if strings.TrimSpace(s.Size) == "" {
				continue
			}
			stock := s.Stock
			if stock < 0 {
				stock = 0
			}
			sizes = append(sizes, models.Size{Label: strings.TrimSpace(s.Size), Stock: stock})
		}
		images := v.Images
		if images == nil {
			images = []string{}
		}
		variants = append(variants, models.Variant{
			Color:  strings.TrimSpace(v.Color),
			Price:  v.Price,
			Sizes:  sizes,
			Images: images,
		})
	}
	return variants
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("product_delete_error", "status", 404, "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("product_delete_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch product")
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var variantIDs []uint
		if err := tx.Model(&models.Variant{}).
			Where("product_id = ?", prod.ID).
			Pluck("id", &variantIDs).Error; err != nil {
			return err
		}
		if len(variantIDs) > 0 {
			if err := tx.Where("variant_id IN ?", variantIDs).Delete(&models.Size{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("product_id = ?", prod.ID).Delete(&models.Variant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, prod.ID).Error
	})
	if txErr != nil {
		l.Error("product_delete_error", "status", 500, "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product from db")
	}

	h.dropIndex(c, prod.ID)
	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": prod.ID,
	})

	l.Info("product_delete_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted"})
}
