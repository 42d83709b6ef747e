package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lojinha-labs/storefront-backend/internal/cart"
	"github.com/lojinha-labs/storefront-backend/internal/catalog"
	"github.com/lojinha-labs/storefront-backend/internal/identity"
	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Service defines the behavior needed by the checkout and order controllers.
type Service interface {
	CheckoutCart(ctx context.Context) (*CheckoutResult, error)
	BuyNow(ctx context.Context, productID int64) (*CheckoutResult, error)
	List(ctx context.Context) ([]Order, error)
	PaymentURL(ctx context.Context) (string, error)
	SetPaymentURL(ctx context.Context, url string) error
}

type orderStore interface {
	Orders(ctx context.Context) ([]Order, error)
	SaveOrders(ctx context.Context, log []Order) error
	PaymentURL(ctx context.Context) (string, error)
	SetPaymentURL(ctx context.Context, url string) error
}

type cartAccess interface {
	Items(ctx context.Context) ([]cart.Line, error)
	Clear(ctx context.Context) error
}

type productGetter interface {
	Get(ctx context.Context, id int64) (*catalog.Product, error)
}

type sessionSource interface {
	Current(ctx context.Context) (*identity.Session, error)
}

// publisher pushes the completed order onto the peer channel. Delivery is
// best-effort; implementations never block or error.
type publisher interface {
	PublishPurchase(ctx context.Context, order Order)
}

type service struct {
	// mu serializes the append cycle on the order log.
	mu        sync.Mutex
	repo      orderStore
	cart      cartAccess
	products  productGetter
	sessions  sessionSource
	publisher publisher
	now       func() time.Time
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	Repo      orderStore
	Cart      cartAccess
	Products  productGetter
	Sessions  sessionSource
	Publisher publisher // optional; nil disables broadcasting
	Now       func() time.Time
}

// NewService constructs an orders service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order store is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart access is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product getter is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session source is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:      params.Repo,
		cart:      params.Cart,
		products:  params.Products,
		sessions:  params.Sessions,
		publisher: params.Publisher,
		now:       now,
	}, nil
}

// CheckoutCart turns the cart into an order, broadcasts the purchase, and
// empties the cart.
func (s *service) CheckoutCart(ctx context.Context) (*CheckoutResult, error) {
	lines, err := s.cart.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	result, err := s.record(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := s.cart.Clear(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return result, nil
}

// BuyNow checks out a single product without touching the cart.
func (s *service) BuyNow(ctx context.Context, productID int64) (*CheckoutResult, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	line := cart.Line{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Quantity:  1,
	}
	return s.record(ctx, []cart.Line{line})
}

func (s *service) record(ctx context.Context, lines []cart.Line) (*CheckoutResult, error) {
	customer := ""
	var location *identity.Location
	session, err := s.sessions.Current(ctx)
	if err != nil && !pkgerrors.HasCode(err, pkgerrors.CodeAuth) {
		return nil, err
	}
	// Anonymous checkout stays allowed; the order just has no customer.
	if session != nil {
		customer = session.Username
		location = session.Location
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	now := s.now()
	order := Order{
		OrderID:   fmt.Sprintf("ORD%d", now.UnixMilli()),
		Lines:     lines,
		Total:     total,
		Customer:  customer,
		Location:  location,
		Timestamp: now,
		Status:    StatusPending,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.repo.Orders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order log")
	}
	log = append(log, order)
	if err := s.repo.SaveOrders(ctx, log); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append order")
	}

	if s.publisher != nil {
		s.publisher.PublishPurchase(ctx, order)
	}

	paymentURL, err := s.repo.PaymentURL(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment url")
	}
	return &CheckoutResult{Order: &order, PaymentURL: paymentURL}, nil
}

func (s *service) List(ctx context.Context) ([]Order, error) {
	log, err := s.repo.Orders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order log")
	}
	return log, nil
}

func (s *service) PaymentURL(ctx context.Context) (string, error) {
	url, err := s.repo.PaymentURL(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment url")
	}
	return url, nil
}

func (s *service) SetPaymentURL(ctx context.Context, url string) error {
	if err := s.repo.SetPaymentURL(ctx, url); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist payment url")
	}
	return nil
}
