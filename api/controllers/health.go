package controllers

import (
	"net/http"

	"github.com/lojinha-labs/storefront-backend/api/responses"
	"github.com/lojinha-labs/storefront-backend/pkg/config"
	pkgdb "github.com/lojinha-labs/storefront-backend/pkg/db"
	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
	"github.com/lojinha-labs/storefront-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing stores. Either pinger may be nil when the
// deployment runs without that dependency.
func HealthReady(cfg *config.Config, db, cache pkgdb.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "database unreachable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "cache unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
