package repositories

import (
	"context"

	"gudang/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update applies the given fields to the product and returns the
	// post-update record.
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	// DeductStock atomically decrements the quantity of the product by the
	// given amount, but only if the current quantity is sufficient. It returns
	// the post-deduction record, ErrProductNotFound if the id does not
	// resolve, or ErrInsufficientStock if the quantity check fails. The check
	// and the decrement are a single store operation so that concurrent
	// deductions can never drive the quantity negative.
	DeductStock(ctx context.Context, id string, quantity int) (*models.Product, error)
}
