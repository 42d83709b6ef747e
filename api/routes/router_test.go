package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/lojinha-labs/storefront-backend/internal/cart"
	"github.com/lojinha-labs/storefront-backend/internal/catalog"
	"github.com/lojinha-labs/storefront-backend/internal/identity"
	"github.com/lojinha-labs/storefront-backend/internal/orders"
	"github.com/lojinha-labs/storefront-backend/pkg/config"
	"github.com/lojinha-labs/storefront-backend/pkg/kvstore"
	"github.com/lojinha-labs/storefront-backend/pkg/logger"
	"github.com/lojinha-labs/storefront-backend/pkg/security"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Admin.Secret = "admin123"

	logg := logger.New(logger.Options{Output: io.Discard, Level: zerolog.Disabled})

	store := kvstore.NewMemory()

	identitySvc, err := identity.NewService(identity.ServiceParams{
		Repo:        identity.NewRepository(store, logg),
		Encoder:     security.Base64Encoder{},
		Biometric:   identity.NewVerifier(cfg.Biometric),
		AdminConfig: cfg.Admin,
	})
	if err != nil {
		t.Fatalf("identity service: %v", err)
	}

	catalogSvc, err := catalog.NewService(catalog.ServiceParams{
		Repo:        catalog.NewRepository(store, logg),
		SeedCatalog: true,
	})
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}

	cartSvc, err := cart.NewService(cart.ServiceParams{
		Repo:     cart.NewRepository(store, logg),
		Products: catalogSvc,
	})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(store, logg),
		Cart:     cartSvc,
		Products: catalogSvc,
		Sessions: identitySvc,
	})
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}

	return NewRouter(cfg, logg, nil, nil, identitySvc, catalogSvc, cartSvc, ordersSvc, nil, prometheus.NewRegistry())
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, w.Code)
		}
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics endpoint returned %d", w.Code)
	}
}

func TestAdminRoutesGatedUntilUnlocked(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/admin/users", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before unlock, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/admin/unlock", strings.NewReader(`{"secret":"admin123"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("unlock failed with %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/admin/users", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after unlock, got %d", w.Code)
	}
}

func TestStorefrontFlowThroughRouter(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/auth/register", strings.NewReader(`{"username":"ana","secret":"pw"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed with %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/products", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("products list failed with %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"product_id":1,"quantity":1}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("cart add failed with %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/checkout", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout failed with %d: %s", w.Code, w.Body.String())
	}

	var envelope struct {
		Data struct {
			Order struct {
				Customer string `json:"customer"`
			} `json:"order"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode checkout payload: %v", err)
	}
	if envelope.Data.Order.Customer != "ana" {
		t.Fatalf("expected order attributed to ana, got %q", envelope.Data.Order.Customer)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sync/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("sync status failed with %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Uninitialized") {
		t.Fatalf("expected uninitialized sync state: %s", w.Body.String())
	}
}
