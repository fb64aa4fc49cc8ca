// Package service provides the implementation of product catalog business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/schema"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// GetOne retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	GetOne(ctx context.Context, id string) (*ProductDto, error)

	// GetAll returns every product in the catalog.
	// Returns an empty slice if no products exist.
	GetAll(ctx context.Context) ([]ProductDto, error)

	// ListPage returns one bounded page of products.
	// Returns ErrInvalidCursor if cursor was not issued by a previous page.
	ListPage(ctx context.Context, cursor string, limit int32) (*ProductPage, error)

	// Create adds a new product with a freshly generated ID.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update merges the supplied fields into an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id string, product ProductUpdateDto) (*ProductDto, error)

	// Delete removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id string) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	logger     *slog.Logger
	created    metric.Int64Counter
	updated    metric.Int64Counter
	deleted    metric.Int64Counter
}

// NewService creates a new instance of ProductService with the provided store and event publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("catalog-service")
	return &Service{
		repository: repo,
		publisher:  publisher,
		logger:     logger.With("component", "service"),
		created:    mustCounter(meter, "products_created", "Total number of created products"),
		updated:    mustCounter(meter, "products_updated", "Total number of updated products"),
		deleted:    mustCounter(meter, "products_deleted", "Total number of deleted products"),
	}
}

func mustCounter(meter metric.Meter, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		panic(fmt.Sprintf("failed to create %s counter: %v", name, err))
	}
	return counter
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Price and Description are pointers so that a missing field can be told apart from a zero value.
type ProductCreateDto struct {
	Name        string   `json:"name"        validate:"required"`
	Brand       string   `json:"brand"       validate:"required"`
	Price       *float64 `json:"price"       validate:"required"`
	Description *string  `json:"description" validate:"required"`
}

// ProductUpdateDto represents a partial update. Absent fields are left unchanged.
type ProductUpdateDto struct {
	Name        *string  `json:"name"        validate:"omitnil,min=1"`
	Brand       *string  `json:"brand"       validate:"omitnil,min=1"`
	Price       *float64 `json:"price"       validate:"omitnil"`
	Description *string  `json:"description" validate:"omitnil"`
}

// ProductPage is one page of a bounded listing. NextCursor is empty on the last page.
type ProductPage struct {
	Items      []ProductDto
	NextCursor string
}

// GetOne checks that the product exists and then reads it.
func (s *Service) GetOne(ctx context.Context, id string) (*ProductDto, error) {
	if _, err := s.probe(ctx, id); err != nil {
		return nil, err
	}
	product, err := s.repository.FetchByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	if product == nil {
		return nil, catalogerrors.ErrProductNotFound
	}
	return toDto(product), nil
}

// GetAll retrieves all products and returns them as ProductDtos.
func (s *Service) GetAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toDtos(products), nil
}

// ListPage retrieves a single page of products.
func (s *Service) ListPage(ctx context.Context, cursor string, limit int32) (*ProductPage, error) {
	products, next, err := s.repository.ScanPage(ctx, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products page: %w", err)
	}
	return &ProductPage{Items: toDtos(products), NextCursor: next}, nil
}

// Create assigns a new ID, persists the product and returns the stored form.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	record := schema.Product{
		ID:          uuid.NewString(),
		Name:        product.Name,
		Brand:       product.Brand,
		Price:       deref(product.Price),
		Description: deref(product.Description),
	}
	created, err := s.repository.Insert(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(ctx, events.ActionCreated, created)
	s.created.Add(ctx, 1)
	return toDto(created), nil
}

// Update checks existence and merges the supplied fields. An empty update returns the current product.
func (s *Service) Update(ctx context.Context, id string, product ProductUpdateDto) (*ProductDto, error) {
	current, err := s.probe(ctx, id)
	if err != nil {
		return nil, err
	}
	patch := schema.ProductPatch{
		Name:        product.Name,
		Brand:       product.Brand,
		Price:       product.Price,
		Description: product.Description,
	}
	if patch.IsEmpty() {
		return toDto(current), nil
	}

	updated, err := s.repository.MergeUpdate(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	s.publish(ctx, events.ActionUpdated, updated)
	s.updated.Add(ctx, 1)
	return toDto(updated), nil
}

// Delete checks existence and removes the product.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.probe(ctx, id); err != nil {
		return err
	}
	if err := s.repository.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}

	s.publish(ctx, events.ActionDeleted, &schema.Product{ID: id})
	s.deleted.Add(ctx, 1)
	return nil
}

// probe returns the stored product or ErrProductNotFound when id is absent.
func (s *Service) probe(ctx context.Context, id string) (*schema.Product, error) {
	product, err := s.repository.FetchByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check product %s: %w", id, err)
	}
	if product == nil {
		return nil, fmt.Errorf("product %s: %w", id, catalogerrors.ErrProductNotFound)
	}
	return product, nil
}

// publish emits a change event. The store write already succeeded, so failures are only logged.
func (s *Service) publish(ctx context.Context, action events.Action, product *schema.Product) {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	event := events.ProductChangedEvent{
		Carrier:    carrier,
		Action:     action,
		ProductID:  product.ID,
		OccurredAt: time.Now().UTC(),
	}
	if action != events.ActionDeleted {
		event.Product = &events.ProductSnapshot{
			Name:        product.Name,
			Brand:       product.Brand,
			Price:       product.Price,
			Description: product.Description,
		}
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ProductChangedEvent", "action", action, "ID", product.ID, "error", err)
	}
}

// toDto converts a schema.Product to a ProductDto.
func toDto(product *schema.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Brand:       product.Brand,
		Price:       product.Price,
		Description: product.Description,
	}
}

func toDtos(products []schema.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return dtos
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
