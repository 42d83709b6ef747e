package controllers

import (
	"net/http"

	"github.com/lojinha-labs/storefront-backend/api/responses"
	"github.com/lojinha-labs/storefront-backend/api/validators"
	"github.com/lojinha-labs/storefront-backend/internal/identity"
	"github.com/lojinha-labs/storefront-backend/internal/orders"
	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
	"github.com/lojinha-labs/storefront-backend/pkg/logger"
)

type adminUnlockRequest struct {
	Secret string `json:"secret" validate:"required"`
}

type adminSecretRequest struct {
	Secret string `json:"secret" validate:"required,min=1"`
}

type paymentURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// AdminUnlock checks the supplied secret against the configured admin secret.
func AdminUnlock(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminUnlockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ok, err := svc.AdminUnlock(r.Context(), req.Secret)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeAuth, "invalid admin secret"))
			return
		}

		responses.WriteSuccess(w, map[string]bool{"unlocked": true})
	}
}

// AdminLock relocks the admin surface without touching the user session.
func AdminLock(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.AdminLock(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"unlocked": false})
	}
}

// AdminUpdateSecret persists a new admin secret that overrides the configured
// default from then on.
func AdminUpdateSecret(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminSecretRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateAdminSecret(r.Context(), req.Secret); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// AdminListUsers returns registered users without their encoded secrets.
func AdminListUsers(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, users)
	}
}

// AdminSetPaymentURL stores the redirect target handed out at checkout.
func AdminSetPaymentURL(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentURLRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetPaymentURL(r.Context(), req.URL); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"paymentUrl": req.URL})
	}
}

// AdminGetPaymentURL returns the current checkout redirect target.
func AdminGetPaymentURL(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := svc.PaymentURL(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"paymentUrl": url})
	}
}
