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

func TestCreateProduct(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db, Producer: &mykafka.Producer{}, Index: "products"}

	payload := map[string]any{
		"title":     "Classic Tee",
		"category":  "tshirts",
		"mainImage": "https://img.example/main.jpg",
		"variants": []map[string]any{
			{
				"color": "Red",
				"price": 499,
				"sizes": []map[string]any{{"size": "M", "stock": 5}},
			},
		},
	}
	rec, c := newJSONContext(t, e, http.MethodPost, "/api/products", payload)
	require.NoError(t, h.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Product models.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Product.ID)
	require.NotEmpty(t, resp.Product.SKU)
	require.Len(t, resp.Product.Variants, 1)
	require.Len(t, resp.Product.Variants[0].Sizes, 1)
	require.Equal(t, 5, resp.Product.Variants[0].Sizes[0].Stock)
}

func TestCreateProductRequiresVariants(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db, Producer: &mykafka.Producer{}}

	_, c := newJSONContext(t, e, http.MethodPost, "/api/products", map[string]any{
		"title":    "No Variants",
		"category": "tshirts",
	})
	err := h.CreateProduct(c)
	require.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))

	_, c2 := newJSONContext(t, e, http.MethodPost, "/api/products", map[string]any{
		"title":    "No Sizes",
		"category": "tshirts",
		"variants": []map[string]any{{"color": "Red", "price": 499}},
	})
	err = h.CreateProduct(c2)
	require.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
}

func TestGetProduct(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db, Producer: &mykafka.Producer{}}
	p := seedCatalogProduct(t, db)

	rec, c := newJSONContext(t, e, http.MethodGet, "/api/products/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, p.ID, got.ID)
	require.Equal(t, p.Title, got.Title)
	require.Len(t, got.Variants, 1)
	require.Len(t, got.Variants[0].Sizes, 1)
}

func TestGetProductNotFound(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db, Producer: &mykafka.Producer{}}

	_, c := newJSONContext(t, e, http.MethodGet, "/api/products/99", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")
	err := h.GetProduct(c)
	require.Equal(t, http.StatusNotFound, httpErrorCode(t, err))
}

func TestGetProductsCategoryFilter(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db, Producer: &mykafka.Producer{}}

	seedCatalogProduct(t, db)
	require.NoError(t, db.Create(&models.Product{
		Title: "Hoodie", Category: "hoodies", SKU: "SKU-HOOD0001",
		Variants: []models.Variant{
			{Color: "Black", Price: 999, Sizes: []models.Size{{Label: "L", Stock: 3}}},
		},
	}).Error)

	rec, c := newJSONContext(t, e, http.MethodGet, "/api/products?category=hoodies", nil)
	require.NoError(t, h.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "Hoodie", got[0].Title)
}

func TestGetProductsPriceFilter(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db, Producer: &mykafka.Producer{}}

	seedCatalogProduct(t, db) // variant price 499
	require.NoError(t, db.Create(&models.Product{
		Title: "Hoodie", Category: "hoodies", SKU: "SKU-HOOD0001",
		Variants: []models.Variant{
			{Color: "Black", Price: 999, Sizes: []models.Size{{Label: "L", Stock: 3}}},
		},
	}).Error)

	rec, c := newJSONContext(t, e, http.MethodGet, "/api/products?minPrice=600", nil)
	require.NoError(t, h.GetProducts(c))

	var got []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "Hoodie", got[0].Title)
}

func TestGetRelatedProductsExcludesSelf(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db, Producer: &mykafka.Producer{}}

	p := seedCatalogProduct(t, db)
	require.NoError(t, db.Create(&models.Product{
		Title: "Other Tee", Category: "tshirts", SKU: "SKU-TEE00002",
		Variants: []models.Variant{
			{Color: "Blue", Price: 399, Sizes: []models.Size{{Label: "S", Stock: 2}}},
		},
	}).Error)

	rec, c := newJSONContext(t, e, http.MethodGet, "/api/products/related/tshirts/1", nil)
	c.SetParamNames("category", "productId")
	c.SetParamValues("tshirts", "1")
	require.NoError(t, h.GetRelatedProducts(c))

	var got []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.NotEqual(t, p.ID, got[0].ID)
}

func TestUpdateProductReplacesVariants(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db, Producer: &mykafka.Producer{}}
	p := seedCatalogProduct(t, db)

	payload := map[string]any{
		"title": "Classic Tee v2",
		"variants": []map[string]any{
			{
				"color": "Green",
				"price": 549,
				"sizes": []map[string]any{
					{"size": "M", "stock": 4},
					{"size": "", "stock": 9}, // dropped by sanitization
				},
			},
			{"color": "", "price": 100}, // dropped: no color
		},
	}
	rec, c := newJSONContext(t, e, http.MethodPut, "/api/products/1", payload)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Product
	require.NoError(t, db.Preload("Variants.Sizes").First(&updated, p.ID).Error)
	require.Equal(t, "Classic Tee v2", updated.Title)
	require.Len(t, updated.Variants, 1)
	require.Equal(t, "Green", updated.Variants[0].Color)
	require.Len(t, updated.Variants[0].Sizes, 1)
	require.Equal(t, 4, updated.Variants[0].Sizes[0].Stock)

	// old variant rows are gone
	var variantCount int64
	require.NoError(t, db.Model(&models.Variant{}).Where("product_id = ?", p.ID).Count(&variantCount).Error)
	require.EqualValues(t, 1, variantCount)
}

func TestUpdateProductKeepsCategoryOnBlank(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db, Producer: &mykafka.Producer{}}
	p := seedCatalogProduct(t, db)

	_, c := newJSONContext(t, e, http.MethodPut, "/api/products/1", map[string]any{
		"category": "  ",
	})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateProduct(c))

	var updated models.Product
	require.NoError(t, db.First(&updated, p.ID).Error)
	require.Equal(t, "tshirts", updated.Category)
}

func TestDeleteProduct(t *testing.T) {
	db := initTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db, Producer: &mykafka.Producer{}}
	p := seedCatalogProduct(t, db)

	rec, c := newJSONContext(t, e, http.MethodDelete, "/api/products/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Count(&count).Error)
	require.Zero(t, count)

	// nested rows removed as well
	require.NoError(t, db.Model(&models.Variant{}).Where("product_id = ?", p.ID).Count(&count).Error)
	require.Zero(t, count)

	_, c2 := newJSONContext(t, e, http.MethodDelete, "/api/products/1", nil)
	c2.SetParamNames("id")
	c2.SetParamValues("1")
	err := h.DeleteProduct(c2)
	require.Equal(t, http.StatusNotFound, httpErrorCode(t, err))
}
