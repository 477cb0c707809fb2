package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/lovit-shop/backend/internal/models"
	"github.com/lovit-shop/backend/internal/mykafka"
)

func TestAddToCartNormalizesVariant(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &CartHandler{DB: db, Producer: &mykafka.Producer{}}

	payload := map[string]any{
		"productId": 1,
		"title":     "Classic Tee",
		"price":     499,
		"quantity":  2,
		"variant":   map[string]any{"color": " Red ", "size": "m"},
	}
	rec, c := newJSONContext(t, e, http.MethodPost, "/api/cart/7", payload)
	c.SetParamNames("userId")
	c.SetParamValues("7")
	require.NoError(t, h.AddToCart(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Item models.CartItem `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "red", resp.Item.Color)
	require.Equal(t, "M", resp.Item.Size)
	require.EqualValues(t, 2, resp.Item.Quantity)
}

func TestAddToCartMergesQuantity(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &CartHandler{DB: db, Producer: &mykafka.Producer{}}

	payload := map[string]any{
		"productId": 1,
		"title":     "Classic Tee",
		"price":     499,
		"quantity":  1,
		"variant":   map[string]any{"color": "red", "size": "M"},
	}

	_, c := newJSONContext(t, e, http.MethodPost, "/api/cart/7", payload)
	c.SetParamNames("userId")
	c.SetParamValues("7")
	require.NoError(t, h.AddToCart(c))

	rec, c2 := newJSONContext(t, e, http.MethodPost, "/api/cart/7", payload)
	c2.SetParamNames("userId")
	c2.SetParamValues("7")
	require.NoError(t, h.AddToCart(c2))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.CartItem
	require.NoError(t, db.Where("user_id = ?", 7).Find(&items).Error)
	require.Len(t, items, 1)
	require.EqualValues(t, 2, items[0].Quantity)
}

func TestAddToCartDefaultsVariant(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &CartHandler{DB: db, Producer: &mykafka.Producer{}}

	_, c := newJSONContext(t, e, http.MethodPost, "/api/cart/7", map[string]any{
		"productId": 2,
		"title":     "Plain Tee",
		"price":     299,
	})
	c.SetParamNames("userId")
	c.SetParamValues("7")
	require.NoError(t, h.AddToCart(c))

	var item models.CartItem
	require.NoError(t, db.Where("user_id = ?", 7).First(&item).Error)
	require.Equal(t, "default", item.Color)
	require.Equal(t, "default", item.Size)
	require.EqualValues(t, 1, item.Quantity)
}

func TestAddToCartMissingProduct(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &CartHandler{DB: db, Producer: &mykafka.Producer{}}

	_, c := newJSONContext(t, e, http.MethodPost, "/api/cart/7", map[string]any{
		"title": "No Product",
	})
	c.SetParamNames("userId")
	c.SetParamValues("7")
	err := h.AddToCart(c)
	require.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
}

func TestUpdateCartItem(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &CartHandler{DB: db, Producer: &mykafka.Producer{}}

	item := models.CartItem{UserID: 7, ProductID: 1, Title: "Classic Tee", Price: 499, Quantity: 1}
	require.NoError(t, db.Create(&item).Error)

	rec, c := newJSONContext(t, e, http.MethodPut, "/api/cart/1", map[string]any{"qty": 4})
	c.SetParamNames("itemId")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateCartItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.CartItem
	require.NoError(t, db.First(&updated, item.ID).Error)
	require.EqualValues(t, 4, updated.Quantity)
}

func TestUpdateCartItemNotFound(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &CartHandler{DB: db, Producer: &mykafka.Producer{}}

	_, c := newJSONContext(t, e, http.MethodPut, "/api/cart/42", map[string]any{"qty": 4})
	c.SetParamNames("itemId")
	c.SetParamValues("42")
	err := h.UpdateCartItem(c)
	require.Equal(t, http.StatusNotFound, httpErrorCode(t, err))
}

func TestRemoveFromCart(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &CartHandler{DB: db, Producer: &mykafka.Producer{}}

	item := models.CartItem{UserID: 7, ProductID: 1, Title: "Classic Tee", Price: 499, Quantity: 1}
	require.NoError(t, db.Create(&item).Error)

	rec, c := newJSONContext(t, e, http.MethodDelete, "/api/cart/1", nil)
	c.SetParamNames("itemId")
	c.SetParamValues("1")
	require.NoError(t, h.RemoveFromCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestClearCart(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &CartHandler{DB: db, Producer: &mykafka.Producer{}}

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.CartItem{
			UserID: 7, ProductID: uint(i + 1), Title: "Item", Price: 100, Quantity: 1,
		}).Error)
	}
	require.NoError(t, db.Create(&models.CartItem{
		UserID: 8, ProductID: 9, Title: "Other", Price: 100, Quantity: 1,
	}).Error)

	rec, c := newJSONContext(t, e, http.MethodDelete, "/api/cart/clear/7", nil)
	c.SetParamNames("userId")
	c.SetParamValues("7")
	require.NoError(t, h.ClearCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", 7).Count(&count).Error)
	require.Zero(t, count)

	// other users untouched
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", 8).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
