package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lovit-shop/backend/internal/handlers"
	"github.com/lovit-shop/backend/internal/middleware/auth"
)

type Deps struct {
	DB              *gorm.DB
	JWTSecret       []byte
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	ProductHandler  *handlers.ProductHandler
	OrderHandler    *handlers.OrderHandler
	CartHandler     *handlers.CartHandler
	WishlistHandler *handlers.WishlistHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	requireLogin := auth.RequireLogin(d.JWTSecret)
	adminOnly := auth.AdminOnly(d.JWTSecret)

	api.POST("/auth/register", d.AuthHandler.Register)
	api.POST("/auth/login", d.AuthHandler.Login)

	users := api.Group("/users")
	users.GET("", d.UserHandler.GetUsers, adminOnly)
	users.GET("/:id", d.UserHandler.GetUser, requireLogin)
	users.PUT("/:id", d.UserHandler.UpdateUser, requireLogin)
	users.DELETE("/:id", d.UserHandler.DeleteUser, adminOnly)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/related/:category/:productId", d.ProductHandler.GetRelatedProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, adminOnly)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, adminOnly)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, adminOnly)

	orders := api.Group("/orders")
	orders.POST("", d.OrderHandler.PlaceOrder, requireLogin)
	orders.GET("/user/:userId", d.OrderHandler.GetUserOrders, requireLogin)
	orders.GET("", d.OrderHandler.GetAllOrders, adminOnly)
	orders.PUT("/:id/status", d.OrderHandler.UpdateStatus, adminOnly)

	cart := api.Group("/cart")
	cart.GET("/:userId", d.CartHandler.GetCart)
	cart.POST("/:userId", d.CartHandler.AddToCart)
	cart.PUT("/:itemId", d.CartHandler.UpdateCartItem)
	cart.DELETE("/clear/:userId", d.CartHandler.ClearCart)
	cart.DELETE("/:itemId", d.CartHandler.RemoveFromCart)

	wishlist := api.Group("/wishlist")
	wishlist.GET("/:userId", d.WishlistHandler.GetWishlist)
	wishlist.POST("/:userId", d.WishlistHandler.AddToWishlist)
	wishlist.DELETE("/:userId/:itemId", d.WishlistHandler.RemoveFromWishlist)

	api.GET("/search", d.SearchHandler.Search)
}
