package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lovit-shop/backend/internal/logging"
	"github.com/lovit-shop/backend/internal/models"
	"github.com/lovit-shop/backend/internal/mykafka"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		l.Warn("cart_get_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		l.Error("cart_get_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch cart")
	}

	return c.JSON(http.StatusOK, items)
}

// AddToCart normalizes the requested variant (color lowercased, size
// uppercased, both defaulting to "default") and merges quantity into an
// existing row for the same user/product/color/size selection.
func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		l.Warn("cart_add_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var req struct {
		ProductID uint    `json:"productId"`
		Title     string  `json:"title"`
		Price     float64 `json:"price"`
		Quantity  uint    `json:"quantity"`
		Variant   struct {
			Color string `json:"color"`
			Size  string `json:"size"`
			Image string `json:"image"`
		} `json:"variant"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("cart_add_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == 0 {
		l.Warn("cart_add_error", "status", 400, "reason", "missing productId")
		return echo.NewHTTPError(http.StatusBadRequest, "Missing userId or productId")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	color := strings.ToLower(strings.TrimSpace(req.Variant.Color))
	if color == "" {
		color = "default"
	}
	size := strings.ToUpper(strings.TrimSpace(req.Variant.Size))
	if size == "" {
		size = "default"
	}

	var item models.CartItem
	tx := h.DB.Where(
		"user_id = ? AND product_id = ? AND color = ? AND size = ?",
		userID, req.ProductID, color, size,
	).First(&item)
	if tx.Error == nil {
		item.Quantity += req.Quantity
		if err := h.DB.Save(&item).Error; err != nil {
			l.Error("cart_add_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update cart item")
		}
		h.publish(c, map[string]any{
			"type":      "cart_quantity_updated",
			"userID":    userID,
			"productID": req.ProductID,
			"quantity":  item.Quantity,
		})
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Quantity updated in cart",
			"item":    item,
		})
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		l.Error("cart_add_error", "status", 500, "error", tx.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch cart")
	}

	newItem := models.CartItem{
		UserID:    uint(userID),
		ProductID: req.ProductID,
		Title:     req.Title,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Color:     color,
		Size:      size,
		Image:     req.Variant.Image,
	}
	if err := h.DB.Create(&newItem).Error; err != nil {
		l.Error("cart_add_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add cart item")
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": req.ProductID,
		"quantity":  newItem.Quantity,
	})
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Added to cart",
		"item":    newItem,
	})
}

func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		l.Warn("cart_update_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var req struct {
		Qty uint `json:"qty"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("cart_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Qty < 1 {
		l.Warn("cart_update_error", "status", 400, "reason", "qty below one")
		return echo.NewHTTPError(http.StatusBadRequest, "qty must be at least 1")
	}

	var item models.CartItem
	if err := h.DB.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("cart_update_error", "status", 404, "item_id", itemID)
			return echo.NewHTTPError(http.StatusNotFound, "Item not found")
		}
		l.Error("cart_update_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch cart item")
	}

	item.Quantity = req.Qty
	if err := h.DB.Save(&item).Error; err != nil {
		l.Error("cart_update_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update cart item")
	}

	h.publish(c, map[string]any{
		"type":     "cart_quantity_updated",
		"userID":   item.UserID,
		"itemID":   item.ID,
		"quantity": item.Quantity,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Quantity updated",
		"item":    item,
	})
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		l.Warn("cart_remove_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var item models.CartItem
	if err := h.DB.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("cart_remove_error", "status", 404, "item_id", itemID)
			return echo.NewHTTPError(http.StatusNotFound, "Item not found")
		}
		l.Error("cart_remove_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch cart item")
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		l.Error("cart_remove_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete cart item")
	}

	h.publish(c, map[string]any{
		"type":   "cart_item_deleted",
		"userID": item.UserID,
		"itemID": item.ID,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Item removed"})
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		l.Warn("cart_clear_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	if err := h.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		l.Error("cart_clear_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot clear cart")
	}

	h.publish(c, map[string]any{
		"type":   "cart_cleared",
		"userID": userID,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Cart cleared successfully"})
}
