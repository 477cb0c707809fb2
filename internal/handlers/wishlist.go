package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lovit-shop/backend/internal/logging"
	"github.com/lovit-shop/backend/internal/models"
)

type WishlistHandler struct {
	DB *gorm.DB
}

func (h *WishlistHandler) GetWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.get")

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		l.Warn("wishlist_get_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var items []models.WishlistItem
	if err := h.DB.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		l.Error("wishlist_get_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch wishlist")
	}

	return c.JSON(http.StatusOK, items)
}

func (h *WishlistHandler) AddToWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.add")

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		l.Warn("wishlist_add_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var req struct {
		ProductID uint    `json:"productId"`
		Title     string  `json:"title"`
		Image     string  `json:"image"`
		Price     float64 `json:"price"`
		MRP       float64 `json:"mrp"`
		Color     string  `json:"color"`
		Size      string  `json:"size"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("wishlist_add_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == 0 {
		l.Warn("wishlist_add_error", "status", 400, "reason", "missing productId")
		return echo.NewHTTPError(http.StatusBadRequest, "missing productId")
	}

	var existing models.WishlistItem
	tx := h.DB.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing)
	if tx.Error == nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "Already in wishlist"})
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		l.Error("wishlist_add_error", "status", 500, "error", tx.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch wishlist")
	}

	item := models.WishlistItem{
		UserID:    uint(userID),
		ProductID: req.ProductID,
		Title:     req.Title,
		Image:     req.Image,
		Price:     req.Price,
		MRP:       req.MRP,
		Color:     req.Color,
		Size:      req.Size,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		l.Error("wishlist_add_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add wishlist item")
	}

	l.Info("wishlist_add_success", "user_id", userID, "product_id", req.ProductID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Added to wishlist",
		"item":    item,
	})
}

func (h *WishlistHandler) RemoveFromWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.remove")

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		l.Warn("wishlist_remove_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}
	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		l.Warn("wishlist_remove_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	res := h.DB.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		l.Error("wishlist_remove_error", "status", 500, "error", res.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete wishlist item")
	}
	if res.RowsAffected == 0 {
		l.Warn("wishlist_remove_error", "status", 404, "item_id", itemID)
		return echo.NewHTTPError(http.StatusNotFound, "Item not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Item removed from wishlist"})
}
