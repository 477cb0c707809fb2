package models

import (
	"time"
)

const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// ValidOrderStatus reports whether s is one of the five order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Product struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"    json:"id"`
	Title        string    `gorm:"not null"                    json:"title"`
	Description  string    `json:"description"`
	Category     string    `gorm:"not null;index"              json:"category"`
	Subcategory  string    `json:"subcategory"`
	MainImage    string    `json:"mainImage"`
	SKU          string    `gorm:"uniqueIndex;not null"        json:"sku"`
	IsFeatured   bool      `gorm:"default:false"               json:"isFeatured"`
	IsNewArrival bool      `gorm:"default:false"               json:"isNewArrival"`
	Variants     []Variant `gorm:"constraint:OnDelete:CASCADE" json:"variants"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Variant struct {
	ID        uint     `gorm:"primaryKey;autoIncrement"    json:"id"`
	ProductID uint     `gorm:"index;not null"              json:"productId"`
	Color     string   `json:"color"`
	Price     float64  `gorm:"not null;check:price >= 0"   json:"price"`
	Sizes     []Size   `gorm:"constraint:OnDelete:CASCADE" json:"sizes"`
	Images    []string `gorm:"serializer:json"             json:"images"`
}

// Size is the stock-tracked unit of a variant. Stock is only ever
// decremented by a successful order placement, through a conditional
// update that refuses to go below zero.
type Size struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	VariantID uint   `gorm:"index;not null"            json:"variantId"`
	Label     string `gorm:"column:size;not null"      json:"size"`
	Stock     int    `gorm:"not null;check:stock >= 0" json:"stock"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	IsAdmin      bool      `gorm:"default:false"            json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	UserID    uint      `gorm:"index;not null"             json:"userId"`
	ProductID uint      `gorm:"not null"                   json:"productId"`
	Title     string    `gorm:"not null"                   json:"title"`
	Price     float64   `gorm:"not null"                   json:"price"`
	Quantity  uint      `gorm:"default:1;check:quantity>0" json:"quantity"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"userId"`
	ProductID uint      `gorm:"not null"                 json:"productId"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	Price     float64   `json:"price"`
	MRP       float64   `json:"mrp"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type ShippingAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	UserID          uint            `gorm:"index;not null"                json:"userId"`
	Status          string          `gorm:"not null;default:Pending"      json:"status"`
	TotalAmount     float64         `json:"totalAmount"`
	PaymentMethod   string          `json:"paymentMethod"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shippingAddress"`
	Items           []OrderItem     `gorm:"constraint:OnDelete:CASCADE"   json:"items"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderItem is an immutable snapshot of one purchased product/variant/size
// combination. ProductID is a weak reference used for display lookups only.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null"           json:"orderId"`
	ProductID uint    `json:"productId"`
	Title     string  `json:"title"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Color     string  `json:"color"`
	Size      string  `json:"size"`
	SKU       string  `json:"sku"`
}
