package controllers

import (
	"net/http"

	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/api/validators"
	"github.com/greenbasket/greenbasket-backend/internal/banners"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

type BannersController struct {
	banners banners.Service
	log     *logger.Logger
}

func NewBannersController(svc banners.Service, log *logger.Logger) *BannersController {
	return &BannersController{banners: svc, log: log}
}

// List serves the storefront hero banners.
func (c *BannersController) List(w http.ResponseWriter, r *http.Request) {
	out, err := c.banners.ListBanners(r.Context(), false)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, out)
}

// --- admin ---

func (c *BannersController) ListAll(w http.ResponseWriter, r *http.Request) {
	out, err := c.banners.ListBanners(r.Context(), true)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, out)
}

func (c *BannersController) Create(w http.ResponseWriter, r *http.Request) {
	var in banners.CreateBannerInput
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	banner, err := c.banners.CreateBanner(r.Context(), in)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusCreated, banner)
}

func (c *BannersController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "bannerID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	var in banners.UpdateBannerInput
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	banner, err := c.banners.UpdateBanner(r.Context(), id, in)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, banner)
}

func (c *BannersController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "bannerID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	if err := c.banners.DeleteBanner(r.Context(), id); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteMessage(w, http.StatusOK, "banner deleted")
}
