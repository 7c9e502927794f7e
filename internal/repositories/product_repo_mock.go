package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"gudang/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products ordered by creation time, newest first.
func (r *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool {
		return productList[i].CreatedAt.After(productList[j].CreatedAt)
	})
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID.Hex()] = *product
	return nil
}

// Update applies the given fields to an existing product.
func (r *MockProductRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			product.Name, _ = v.(string)
		case "price":
			product.Price, _ = v.(float64)
		case "category":
			product.Category, _ = v.(string)
		case "quantity":
			product.Quantity, _ = v.(int)
		case "image":
			product.Image, _ = v.(string)
		}
	}
	product.UpdatedAt = time.Now().UTC()
	// Clone the key: map assignment replaces the stored string key, and id may
	// alias a caller-owned buffer (e.g. Fiber's reusable route-param buffer).
	r.products[strings.Clone(id)] = product
	return &product, nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

// DeductStock checks and decrements the quantity under a single lock, giving
// the same atomicity contract as the conditional update in the Mongo
// implementation.
func (r *MockProductRepository) DeductStock(ctx context.Context, id string, quantity int) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	if product.Quantity < quantity {
		return nil, ErrInsufficientStock
	}
	product.Quantity -= quantity
	product.UpdatedAt = time.Now().UTC()
	r.products[strings.Clone(id)] = product
	return &product, nil
}
