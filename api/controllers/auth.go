package controllers

import (
	"net/http"

	"github.com/greenbasket/greenbasket-backend/api/middleware"
	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/api/validators"
	"github.com/greenbasket/greenbasket-backend/internal/users"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

type AuthController struct {
	users users.Service
	log   *logger.Logger
}

func NewAuthController(users users.Service, log *logger.Logger) *AuthController {
	return &AuthController{users: users, log: log}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in users.RegisterInput
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	session, err := c.users.Register(r.Context(), in)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusCreated, session)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in users.LoginInput
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	session, err := c.users.Login(r.Context(), in)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, session)
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeUnauthorized, "authentication required"))
		return
	}

	user, err := c.users.GetProfile(r.Context(), userID)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, user)
}

func (c *AuthController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeUnauthorized, "authentication required"))
		return
	}

	var in users.UpdateProfileInput
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	user, err := c.users.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, user)
}
