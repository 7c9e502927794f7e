package services

import (
	"context"
	"log"
	"strings"

	"gudang/internal/models"
	"gudang/internal/repositories"
)

// EventPublisher publishes inventory events to a message broker. The concrete
// implementation lives in pkg/rabbitmq; a nil publisher disables publishing.
type EventPublisher interface {
	PublishEvent(eventType string, payload interface{}) error
}

// InventoryService handles business logic related to products and stock.
type InventoryService struct {
	repo   repositories.ProductRepository
	events EventPublisher
}

// NewInventoryService creates a new InventoryService. events may be nil, in
// which case no events are published.
func NewInventoryService(repo repositories.ProductRepository, events EventPublisher) *InventoryService {
	return &InventoryService{
		repo:   repo,
		events: events,
	}
}

// GetAllProducts retrieves all products, newest first.
func (s *InventoryService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *InventoryService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct creates a new product with defaults applied.
func (s *InventoryService) CreateProduct(ctx context.Context, product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	product.Category = strings.TrimSpace(product.Category)

	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}

	s.publish("product.created", map[string]interface{}{
		"productId": product.ID.Hex(),
		"name":      product.Name,
		"quantity":  product.Quantity,
	})
	return nil
}

// UpdateProduct applies a partial field replacement and returns the updated
// record. Untouched fields are not revalidated.
func (s *InventoryService) UpdateProduct(ctx context.Context, id string, fields map[string]interface{}) (*models.Product, error) {
	return s.repo.Update(ctx, id, fields)
}

// DeleteProduct deletes a product by its ID.
func (s *InventoryService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DeductStock removes quantity units of the product's stock. The repository
// performs the sufficiency check and the decrement as one atomic operation,
// so the quantity can never go negative under concurrent deductions. Returns
// the new quantity.
func (s *InventoryService) DeductStock(ctx context.Context, productID string, quantity int) (int, error) {
	if productID == "" || quantity <= 0 {
		return 0, ErrInvalidDeduction
	}

	product, err := s.repo.DeductStock(ctx, productID, quantity)
	if err != nil {
		return 0, err
	}

	s.publish("stock.deducted", map[string]interface{}{
		"productId":   product.ID.Hex(),
		"name":        product.Name,
		"deducted":    quantity,
		"newQuantity": product.Quantity,
	})
	return product.Quantity, nil
}

// publish sends an event when a broker is configured. Publishing is
// best-effort: a broker failure never fails the operation that triggered it.
func (s *InventoryService) publish(eventType string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(eventType, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", eventType, err)
	}
}
