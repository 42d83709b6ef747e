package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lojinha-labs/storefront-backend/internal/cart"
	"github.com/lojinha-labs/storefront-backend/internal/catalog"
	"github.com/lojinha-labs/storefront-backend/internal/identity"
	"github.com/lojinha-labs/storefront-backend/internal/orders"
	"github.com/lojinha-labs/storefront-backend/pkg/config"
	"github.com/lojinha-labs/storefront-backend/pkg/kvstore"
	"github.com/lojinha-labs/storefront-backend/pkg/security"
)

type storeStack struct {
	identity identity.Service
	catalog  catalog.Service
	cart     cart.Service
	orders   orders.Service
}

func newStoreStack(t *testing.T) storeStack {
	t.Helper()

	store := kvstore.NewMemory()

	identitySvc, err := identity.NewService(identity.ServiceParams{
		Repo:        identity.NewRepository(store, nil),
		Encoder:     security.Base64Encoder{},
		Biometric:   identity.NewVerifier(config.BiometricConfig{}),
		AdminConfig: config.AdminConfig{},
	})
	if err != nil {
		t.Fatalf("identity service: %v", err)
	}

	catalogSvc, err := catalog.NewService(catalog.ServiceParams{
		Repo:        catalog.NewRepository(store, nil),
		SeedCatalog: true,
	})
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}

	cartSvc, err := cart.NewService(cart.ServiceParams{
		Repo:     cart.NewRepository(store, nil),
		Products: catalogSvc,
	})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(store, nil),
		Cart:     cartSvc,
		Products: catalogSvc,
		Sessions: identitySvc,
	})
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}

	return storeStack{identity: identitySvc, catalog: catalogSvc, cart: cartSvc, orders: ordersSvc}
}

func TestCartAddThenCheckout(t *testing.T) {
	stack := newStoreStack(t)

	w := httptest.NewRecorder()
	CartAdd(stack.cart, nil)(w, httptest.NewRequest("POST", "/cart/items", strings.NewReader(`{"product_id":1,"quantity":2}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("cart add failed with %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	Checkout(stack.orders, nil)(w, httptest.NewRequest("POST", "/checkout", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout failed with %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"orderId":"ORD`) {
		t.Fatalf("expected order id in payload: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	CartGet(stack.cart, nil)(w, httptest.NewRequest("GET", "/cart", nil))
	if strings.Contains(w.Body.String(), "productId") {
		t.Fatalf("cart should be empty after checkout: %s", w.Body.String())
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	stack := newStoreStack(t)

	w := httptest.NewRecorder()
	Checkout(stack.orders, nil)(w, httptest.NewRequest("POST", "/checkout", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", w.Code)
	}
}

func TestBuyNowSkipsCart(t *testing.T) {
	stack := newStoreStack(t)

	w := httptest.NewRecorder()
	CartAdd(stack.cart, nil)(w, httptest.NewRequest("POST", "/cart/items", strings.NewReader(`{"product_id":1}`)))

	w = httptest.NewRecorder()
	BuyNow(stack.orders, nil)(w, httptest.NewRequest("POST", "/checkout/buy-now", strings.NewReader(`{"product_id":2}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("buy now failed with %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	CartGet(stack.cart, nil)(w, httptest.NewRequest("GET", "/cart", nil))
	if !strings.Contains(w.Body.String(), `"productId":1`) {
		t.Fatalf("buy now must not clear the cart: %s", w.Body.String())
	}
}

func TestOrdersListAppendOnly(t *testing.T) {
	stack := newStoreStack(t)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		BuyNow(stack.orders, nil)(w, httptest.NewRequest("POST", "/checkout/buy-now", strings.NewReader(`{"product_id":1}`)))
		if w.Code != http.StatusCreated {
			t.Fatalf("buy now %d failed with %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	OrdersList(stack.orders, nil)(w, httptest.NewRequest("GET", "/orders", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("orders list failed with %d", w.Code)
	}
	if got := strings.Count(w.Body.String(), `"orderId"`); got != 2 {
		t.Fatalf("expected 2 recorded orders, got %d: %s", got, w.Body.String())
	}
}
