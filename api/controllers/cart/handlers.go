package cart

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	cartdto "github.com/dailykart/dailykart-backend/api/controllers/cart/dto"
	"github.com/dailykart/dailykart-backend/api/middleware"
	"github.com/dailykart/dailykart-backend/api/responses"
	"github.com/dailykart/dailykart-backend/api/validators"
	cartsvc "github.com/dailykart/dailykart-backend/internal/cart"
	"github.com/dailykart/dailykart-backend/internal/catalog"
	pkgerrors "github.com/dailykart/dailykart-backend/pkg/errors"
	"github.com/dailykart/dailykart-backend/pkg/logger"
)

// Fetch returns the shopper's cart.
func Fetch(carts *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, sessionID, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(sessionID, store.Lines(r.Context()), nil))
	}
}

// AddItem adds a product to the cart, merging with any existing line for the
// same product and variant combination.
func AddItem(carts *cartsvc.Manager, loader catalog.Loader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, sessionID, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := loader.GetProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx, collector := cartsvc.WithAdvisoryCollector(r.Context())
		if _, err := store.Add(ctx, product, payload.Variant, payload.Quantity, true); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		persist(ctx, carts, sessionID, logg)

		responses.WriteSuccess(w, newCartView(sessionID, store.Lines(ctx), collector.Advisories()))
	}
}

// UpdateItem replaces the quantity of an existing line; zero removes it.
func UpdateItem(carts *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, sessionID, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID := pathLineID(r)
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line id required"))
			return
		}

		var payload cartdto.UpdateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx, collector := cartsvc.WithAdvisoryCollector(r.Context())
		if _, err := store.SetQuantity(ctx, cartsvc.LineID(lineID), payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		persist(ctx, carts, sessionID, logg)

		responses.WriteSuccess(w, newCartView(sessionID, store.Lines(ctx), collector.Advisories()))
	}
}

// RemoveItem deletes a line. Removing an unknown line still succeeds.
func RemoveItem(carts *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, sessionID, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID := pathLineID(r)
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line id required"))
			return
		}

		store.Remove(r.Context(), cartsvc.LineID(lineID))
		persist(r.Context(), carts, sessionID, logg)

		responses.WriteSuccess(w, newCartView(sessionID, store.Lines(r.Context()), nil))
	}
}

// pathLineID extracts the line id path segment. Variant line ids contain "#"
// so the storefront sends them percent-encoded.
func pathLineID(r *http.Request) string {
	raw := chi.URLParam(r, "lineID")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func sessionStore(r *http.Request, carts *cartsvc.Manager) (*cartsvc.Store, string, error) {
	if carts == nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "cart session missing")
	}
	store, err := carts.Session(r.Context(), sessionID)
	if err != nil {
		return nil, "", err
	}
	return store, sessionID, nil
}

func persist(ctx context.Context, carts *cartsvc.Manager, sessionID string, logg *logger.Logger) {
	if err := carts.Persist(ctx, sessionID); err != nil && logg != nil {
		logg.Error(logg.WithSessionID(ctx, sessionID), "persist cart snapshot", err)
	}
}
