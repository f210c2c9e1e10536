package controllers

import (
	"net/http"

	"github.com/cravecart/cravecart-backend/api/middleware"
	"github.com/cravecart/cravecart-backend/api/responses"
	"github.com/cravecart/cravecart-backend/api/validators"
	"github.com/cravecart/cravecart-backend/internal/cart"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/logger"
)

func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		view, err := svc.GetCart(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartAddItems(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body cart.AddItemsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddItems(r.Context(), middleware.UserIDFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartIncrease(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineAction(svc, logg, svcIncrease)
}

func CartDecrease(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineAction(svc, logg, svcDecrease)
}

func CartRemoveLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineAction(svc, logg, svcRemove)
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

type cartLineOp int

const (
	svcIncrease cartLineOp = iota
	svcDecrease
	svcRemove
)

func cartLineAction(svc cart.Service, logg *logger.Logger, op cartLineOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		var view *cart.CartView
		switch op {
		case svcIncrease:
			view, err = svc.IncreaseQuantity(r.Context(), userID, productID)
		case svcDecrease:
			view, err = svc.DecreaseQuantity(r.Context(), userID, productID)
		default:
			view, err = svc.RemoveLine(r.Context(), userID, productID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
