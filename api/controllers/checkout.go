package controllers

import (
	"net/http"

	"github.com/cravecart/cravecart-backend/api/middleware"
	"github.com/cravecart/cravecart-backend/api/responses"
	"github.com/cravecart/cravecart-backend/api/validators"
	"github.com/cravecart/cravecart-backend/internal/checkout"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/logger"
)

// Checkout converts the caller's cart into an order (cash) or a hosted
// payment session (card).
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body checkout.CheckoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), middleware.UserIDFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.RedirectURL != "" {
			// Hosted flow: nothing persisted yet, the webhook writes the order.
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}
