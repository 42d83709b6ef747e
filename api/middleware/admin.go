package middleware

import (
	"context"
	"net/http"

	"github.com/lojinha-labs/storefront-backend/api/responses"
	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
	"github.com/lojinha-labs/storefront-backend/pkg/logger"
)

type adminGate interface {
	IsAdminUnlocked(ctx context.Context) (bool, error)
}

// RequireAdmin rejects requests while the admin surface is locked.
func RequireAdmin(gate adminGate, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			unlocked, err := gate.IsAdminUnlocked(ctx)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if !unlocked {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access is locked"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
