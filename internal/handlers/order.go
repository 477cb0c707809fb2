package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lovit-shop/backend/internal/logging"
	midauth "github.com/lovit-shop/backend/internal/middleware/auth"
	"github.com/lovit-shop/backend/internal/models"
	"github.com/lovit-shop/backend/internal/mykafka"
	"github.com/lovit-shop/backend/internal/service/order"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Orders   *order.Service
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place")

	var req struct {
		UserID          uint                   `json:"userId"`
		Items           []order.Line           `json:"items"`
		ShippingAddress models.ShippingAddress `json:"shippingAddress"`
		PaymentMethod   string                 `json:"paymentMethod"`
		TotalAmount     float64                `json:"totalAmount"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("order_place_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.Items) == 0 {
		l.Warn("order_place_error", "status", 400, "reason", "no items")
		return echo.NewHTTPError(http.StatusBadRequest, "No items provided for order")
	}

	userID := req.UserID
	if userID == 0 {
		userID = midauth.UserID(c)
	}

	placed, err := h.Orders.PlaceOrder(ctx, order.PlaceOrderRequest{
		UserID:          userID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalAmount:     req.TotalAmount,
	})
	if err != nil {
		var (
			pnf *order.ProductNotFoundError
			vnf *order.VariantNotFoundError
			snf *order.SizeNotFoundError
			ins *order.InsufficientStockError
		)
		switch {
		case errors.As(err, &pnf), errors.As(err, &vnf), errors.As(err, &snf):
			l.Warn("order_place_failed", "status", 404, "reason", err.Error())
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.As(err, &ins):
			l.Warn("order_place_failed", "status", 400,
				"reason", "insufficient stock",
				"available", ins.Available, "requested", ins.Requested)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			l.Error("order_place_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to place order")
		}
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"userID":  placed.UserID,
		"orderID": placed.ID,
		"total":   placed.TotalAmount,
	})

	l.Info("order_place_success", "order_id", placed.ID, "user_id", placed.UserID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Order placed successfully and stock updated",
		"order":   placed,
	})
}

func (h *OrderHandler) GetUserOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_user")

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		l.Warn("order_list_user_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	if midauth.UserID(c) != uint(userID) && !midauth.IsAdmin(c) {
		l.Warn("order_list_user_error", "status", 403, "reason", "access denied")
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	var orders []models.Order
	if err := h.DB.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		l.Error("order_list_user_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch orders")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	var orders []models.Order
	if err := h.DB.Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		l.Error("order_list_all_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch orders")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("order_status_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("order_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if !models.ValidOrderStatus(req.Status) {
		l.Warn("order_status_error", "status", 400, "reason", "unknown status", "value", req.Status)
		return echo.NewHTTPError(http.StatusBadRequest, "unknown order status")
	}

	updated, err := h.Orders.UpdateStatus(ctx, uint(orderID), req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("order_status_error", "status", 404, "order_id", orderID)
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		}
		l.Error("order_status_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update order status")
	}

	h.publish(c, map[string]any{
		"type":    "order_status_updated",
		"userID":  updated.UserID,
		"orderID": updated.ID,
		"status":  updated.Status,
	})

	l.Info("order_status_success", "order_id", updated.ID, "new_status", updated.Status)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Order status updated",
		"order":   updated,
	})
}
