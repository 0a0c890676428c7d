package controllers

import (
	"net/http"

	"github.com/greenbasket/greenbasket-backend/api/middleware"
	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/api/validators"
	"github.com/greenbasket/greenbasket-backend/internal/orders"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

type OrdersController struct {
	orders orders.Service
	log    *logger.Logger
}

func NewOrdersController(svc orders.Service, log *logger.Logger) *OrdersController {
	return &OrdersController{orders: svc, log: log}
}

// ListMine serves the customer's order history.
func (c *OrdersController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeUnauthorized, "authentication required"))
		return
	}

	page, err := c.orders.ListUserOrders(r.Context(), userID, pagination.FromRequest(r))
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, page)
}

func (c *OrdersController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeUnauthorized, "authentication required"))
		return
	}

	id, err := pathUUID(r, "orderID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	order, err := c.orders.GetOrder(r.Context(), id, userID, middleware.RoleFrom(r.Context()))
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, order)
}

// Cancel lets a customer cancel their own pending order.
func (c *OrdersController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeUnauthorized, "authentication required"))
		return
	}

	id, err := pathUUID(r, "orderID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	order, err := c.orders.CancelOwnOrder(r.Context(), id, userID)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, order)
}

// --- admin ---

func (c *OrdersController) ListAll(w http.ResponseWriter, r *http.Request) {
	var status *enums.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := enums.OrderStatus(raw)
		if !s.IsValid() {
			responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeValidation, "invalid status filter"))
			return
		}
		status = &s
	}

	page, err := c.orders.ListAllOrders(r.Context(), status, pagination.FromRequest(r))
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, page)
}

func (c *OrdersController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "orderID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	var in updateStatusRequest
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	order, err := c.orders.UpdateStatus(r.Context(), id, enums.OrderStatus(in.Status))
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, order)
}
