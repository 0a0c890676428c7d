package controllers

import (
	"net/http"

	"github.com/greenbasket/greenbasket-backend/api/middleware"
	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/api/validators"
	"github.com/greenbasket/greenbasket-backend/internal/checkout"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

type confirmRequest struct {
	SessionID string `json:"session_id" validate:"required,min=8,max=200"`
}

type CheckoutController struct {
	checkout checkout.Service
	log      *logger.Logger
}

func NewCheckoutController(svc checkout.Service, log *logger.Logger) *CheckoutController {
	return &CheckoutController{checkout: svc, log: log}
}

// Begin opens a payment session for the authenticated user's cart and
// returns the provider redirect URL.
func (c *CheckoutController) Begin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeUnauthorized, "authentication required"))
		return
	}
	sid := middleware.CartSessionFrom(r.Context())

	result, err := c.checkout.BeginCheckout(r.Context(), userID, sid)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusCreated, result)
}

// Confirm reconciles a returned payment session into an order. Safe to
// call repeatedly; later calls return the same order.
func (c *CheckoutController) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeUnauthorized, "authentication required"))
		return
	}
	sid := middleware.CartSessionFrom(r.Context())

	var in confirmRequest
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	result, err := c.checkout.Reconcile(r.Context(), userID, in.SessionID, sid)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	}
	responses.WriteJSON(w, status, result)
}

// Success is the provider return URL. It reconciles the session named
// in the query string, same as Confirm.
func (c *CheckoutController) Success(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeUnauthorized, "authentication required"))
		return
	}
	sid := middleware.CartSessionFrom(r.Context())

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeValidation, "session_id is required"))
		return
	}

	result, err := c.checkout.Reconcile(r.Context(), userID, sessionID, sid)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	}
	responses.WriteJSON(w, status, result)
}

// Cancel is the provider cancel URL. The cart is left untouched so the
// customer can resume.
func (c *CheckoutController) Cancel(w http.ResponseWriter, r *http.Request) {
	responses.WriteMessage(w, http.StatusOK, "checkout cancelled, cart preserved")
}
