package controllers

import (
	"net/http"

	"github.com/dailykart/dailykart-backend/api/middleware"
	"github.com/dailykart/dailykart-backend/api/responses"
	"github.com/dailykart/dailykart-backend/api/validators"
	cartsvc "github.com/dailykart/dailykart-backend/internal/cart"
	checkoutsvc "github.com/dailykart/dailykart-backend/internal/checkout"
	pkgerrors "github.com/dailykart/dailykart-backend/pkg/errors"
	"github.com/dailykart/dailykart-backend/pkg/logger"
)

type quoteRequest struct {
	Discount int64 `json:"discount" validate:"min=0"`
}

// CheckoutQuote prices the shopper's cart without committing anything.
func CheckoutQuote(carts *cartsvc.Manager, calc *checkoutsvc.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		breakdown, _, err := quote(r, carts, calc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, breakdown)
	}
}

// CheckoutSubmit quotes the cart, submits the order, and clears the session.
func CheckoutSubmit(carts *cartsvc.Manager, calc *checkoutsvc.Calculator, submitter checkoutsvc.Submitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if submitter == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		breakdown, sessionID, err := quote(r, carts, calc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := submitter.Submit(r.Context(), sessionID, breakdown)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		carts.EndSession(r.Context(), sessionID)
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func quote(r *http.Request, carts *cartsvc.Manager, calc *checkoutsvc.Calculator) (checkoutsvc.Breakdown, string, error) {
	if carts == nil || calc == nil {
		return checkoutsvc.Breakdown{}, "", pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable")
	}

	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return checkoutsvc.Breakdown{}, "", pkgerrors.New(pkgerrors.CodeValidation, "cart session missing")
	}

	var payload quoteRequest
	if r.ContentLength > 0 {
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return checkoutsvc.Breakdown{}, "", err
		}
	}

	store, err := carts.Session(r.Context(), sessionID)
	if err != nil {
		return checkoutsvc.Breakdown{}, "", err
	}

	breakdown, err := calc.Quote(r.Context(), store.Lines(r.Context()), payload.Discount)
	if err != nil {
		return checkoutsvc.Breakdown{}, "", err
	}
	return breakdown, sessionID, nil
}
