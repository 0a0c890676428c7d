package controllers

import (
	"net/http"

	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/internal/users"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

// AdminUsersController lists customers with their lifetime purchase
// stats for the back office.
type AdminUsersController struct {
	users users.Service
	log   *logger.Logger
}

func NewAdminUsersController(svc users.Service, log *logger.Logger) *AdminUsersController {
	return &AdminUsersController{users: svc, log: log}
}

func (c *AdminUsersController) List(w http.ResponseWriter, r *http.Request) {
	page, err := c.users.ListCustomers(r.Context(), pagination.FromRequest(r))
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, page)
}
