package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/lojinha-labs/storefront-backend/internal/catalog"
	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
)

// Service defines the behavior needed by the cart controller and checkout.
type Service interface {
	Add(ctx context.Context, productID int64, quantity int) ([]Line, error)
	Items(ctx context.Context) ([]Line, error)
	Clear(ctx context.Context) error
}

type lineStore interface {
	Lines(ctx context.Context) ([]Line, error)
	SaveLines(ctx context.Context, lines []Line) error
	Clear(ctx context.Context) error
}

type productGetter interface {
	Get(ctx context.Context, id int64) (*catalog.Product, error)
}

type service struct {
	// mu serializes the merge cycle so two adds of the same product cannot
	// race into two lines.
	mu       sync.Mutex
	repo     lineStore
	products productGetter
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Repo     lineStore
	Products productGetter
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("line store is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product getter is required")
	}
	return &service{repo: params.Repo, products: params.Products}, nil
}

// Add snapshots the product into the cart, merging by product ID: a repeated
// add increments the existing line's quantity instead of appending.
func (s *service) Add(ctx context.Context, productID int64, quantity int) ([]Line, error) {
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.repo.Lines(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	merged := false
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, Line{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  quantity,
		})
	}

	if err := s.repo.SaveLines(ctx, lines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store cart")
	}
	return lines, nil
}

func (s *service) Items(ctx context.Context) ([]Line, error) {
	lines, err := s.repo.Lines(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return lines, nil
}

func (s *service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}
