package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Service defines the behavior needed by the product controllers and the
// sync mirror path.
type Service interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Add(ctx context.Context, input ProductInput) (*Product, error)
	Update(ctx context.Context, id int64, input ProductInput) (*Product, error)
	Delete(ctx context.Context, id int64) error
	ReplaceAll(ctx context.Context, products []Product) error
}

type productStore interface {
	Products(ctx context.Context) ([]Product, bool, error)
	SaveProducts(ctx context.Context, products []Product) error
}

// publisher pushes the full product list onto the peer channel. Delivery is
// best-effort; implementations never block or error.
type publisher interface {
	PublishProducts(ctx context.Context, products []Product)
}

type service struct {
	mu        sync.Mutex
	repo      productStore
	publisher publisher
	seed      bool
	now       func() time.Time
}

// ServiceParams bundles the dependencies required to build a catalog service.
type ServiceParams struct {
	Repo        productStore
	Publisher   publisher // optional; nil disables broadcasting
	SeedCatalog bool
	Now         func() time.Time
}

// NewService constructs a catalog service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product store is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:      params.Repo,
		publisher: params.Publisher,
		seed:      params.SeedCatalog,
		now:       now,
	}, nil
}

// defaultProducts is the first-load seed.
func defaultProducts() []Product {
	return []Product{
		{ID: 1, Name: "Example Product 1", Price: decimal.NewFromFloat(29.99), Image: ""},
		{ID: 2, Name: "Example Product 2", Price: decimal.NewFromFloat(49.99), Image: ""},
	}
}

func (s *service) List(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// load returns the product list, seeding the defaults when the key has never
// been written. Callers hold s.mu.
func (s *service) load(ctx context.Context) ([]Product, error) {
	products, found, err := s.repo.Products(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
	}
	if !found && s.seed {
		products = defaultProducts()
		if err := s.repo.SaveProducts(ctx, products); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed products")
		}
	}
	return products, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *service) Add(ctx context.Context, input ProductInput) (*Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	product := Product{
		ID:          s.now().UnixMilli(),
		Name:        input.Name,
		Price:       input.Price,
		Image:       input.Image,
		Description: input.Description,
	}
	products = append(products, product)

	if err := s.repo.SaveProducts(ctx, products); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store products")
	}
	s.broadcast(ctx, products)
	return &product, nil
}

func (s *service) Update(ctx context.Context, id int64, input ProductInput) (*Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range products {
		if products[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	products[idx].Name = input.Name
	products[idx].Price = input.Price
	products[idx].Image = input.Image
	products[idx].Description = input.Description

	if err := s.repo.SaveProducts(ctx, products); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store products")
	}
	s.broadcast(ctx, products)
	updated := products[idx]
	return &updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return err
	}

	remaining := make([]Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == len(products) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if err := s.repo.SaveProducts(ctx, remaining); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store products")
	}
	s.broadcast(ctx, remaining)
	return nil
}

// ReplaceAll is the sync mirror path: the inbound product_update payload
// replaces the local list wholesale. No broadcast here, the update already
// came from the peer.
func (s *service) ReplaceAll(ctx context.Context, products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveProducts(ctx, products); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store products")
	}
	return nil
}

// broadcast sends the full product list to the peer. Admin mutations always
// ship the complete list, not a delta.
func (s *service) broadcast(ctx context.Context, products []Product) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishProducts(ctx, products)
}

func validateInput(input ProductInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price must not be negative")
	}
	return nil
}
