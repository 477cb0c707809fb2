package order

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/lovit-shop/backend/internal/models"
)

type Service struct {
	DB *gorm.DB
}

type Line struct {
	ProductID uint     `json:"productId"`
	Color     string   `json:"color"`
	Size      string   `json:"size"`
	Quantity  int      `json:"quantity"`
	Price     *float64 `json:"price"`
}

type PlaceOrderRequest struct {
	UserID          uint
	Items           []Line
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	TotalAmount     float64
}

// PlaceOrder resolves each requested line against the live catalog,
// decrements stock and persists the order with status Pending.
//
// Lines are processed strictly sequentially, in input order, and each
// line's decrement is persisted before the next line is looked at. There
// is no cross-line rollback: if line N fails, lines before it keep their
// decrements. Callers must not assume all-or-nothing semantics.
//
// TotalAmount is stored as supplied; it is not recomputed from the lines.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	items := make([]models.OrderItem, 0, len(req.Items))

	for _, line := range req.Items {
		var product models.Product
		if err := s.DB.WithContext(ctx).
			Preload("Variants.Sizes").
			First(&product, line.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ProductNotFoundError{ProductID: line.ProductID}
			}
			return nil, err
		}

		variant := matchVariant(product.Variants, line.Color)
		if variant == nil {
			return nil, &VariantNotFoundError{Color: line.Color}
		}

		size := matchSize(variant.Sizes, line.Size)
		if size == nil {
			return nil, &SizeNotFoundError{Size: line.Size}
		}

		// Single conditional UPDATE closes the check-then-act race on
		// this size: two concurrent orders can both pass resolution, but
		// only decrements that keep stock >= 0 go through.
		res := s.DB.WithContext(ctx).
			Model(&models.Size{}).
			Where("id = ? AND stock >= ?", size.ID, line.Quantity).
			Update("stock", gorm.Expr("stock - ?", line.Quantity))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			available := size.Stock
			var current models.Size
			if err := s.DB.WithContext(ctx).First(&current, size.ID).Error; err == nil {
				available = current.Stock
			}
			return nil, &InsufficientStockError{
				Title:     product.Title,
				Color:     variant.Color,
				Size:      size.Label,
				Available: available,
				Requested: line.Quantity,
			}
		}

		price := variant.Price
		if line.Price != nil {
			price = *line.Price
		}
		image := product.MainImage
		if len(variant.Images) > 0 {
			image = variant.Images[0]
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			Price:     price,
			Color:     variant.Color,
			Size:      size.Label,
			Image:     image,
			Quantity:  line.Quantity,
			SKU:       product.SKU,
		})
	}

	order := models.Order{
		UserID:          req.UserID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalAmount:     req.TotalAmount,
		Status:          models.OrderStatusPending,
	}
	if err := s.DB.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}

	return &order, nil
}

// UpdateStatus sets the order status unconditionally; there is no
// transition table, any of the five statuses may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	var ord models.Order
	if err := s.DB.WithContext(ctx).
		Preload("Items").
		First(&ord, orderID).Error; err != nil {
		return nil, err
	}

	ord.Status = status
	if err := s.DB.WithContext(ctx).Save(&ord).Error; err != nil {
		return nil, err
	}
	return &ord, nil
}

func matchVariant(variants []models.Variant, color string) *models.Variant {
	if color == "" {
		return nil
	}
	for i := range variants {
		v := &variants[i]
		if v.Color != "" && strings.EqualFold(v.Color, color) {
			return v
		}
	}
	return nil
}

func matchSize(sizes []models.Size, label string) *models.Size {
	for i := range sizes {
		s := &sizes[i]
		if strings.EqualFold(s.Label, label) {
			return s
		}
	}
	return nil
}
