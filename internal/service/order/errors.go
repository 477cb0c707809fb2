package order

import "fmt"

type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %d", e.ProductID)
}

type VariantNotFoundError struct {
	Color string
}

func (e *VariantNotFoundError) Error() string {
	return fmt.Sprintf("variant not found for color: %s", e.Color)
}

type SizeNotFoundError struct {
	Size string
}

func (e *SizeNotFoundError) Error() string {
	return fmt.Sprintf("size not found for %s", e.Size)
}

// InsufficientStockError carries the available count observed when the
// conditional decrement was refused. Available can be stale by the time
// the caller reads it; it is informational only.
type InsufficientStockError struct {
	Title     string
	Color     string
	Size      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s, size %s). Available: %d",
		e.Title, e.Color, e.Size, e.Available)
}
