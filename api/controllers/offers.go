package controllers

import (
	"net/http"

	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/api/validators"
	"github.com/greenbasket/greenbasket-backend/internal/offers"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

// OffersController is the back-office surface for coupon offers.
type OffersController struct {
	offers offers.Service
	log    *logger.Logger
}

func NewOffersController(svc offers.Service, log *logger.Logger) *OffersController {
	return &OffersController{offers: svc, log: log}
}

func (c *OffersController) List(w http.ResponseWriter, r *http.Request) {
	page, err := c.offers.ListOffers(r.Context(), pagination.FromRequest(r))
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, page)
}

func (c *OffersController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "offerID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	offer, err := c.offers.GetOffer(r.Context(), id)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, offer)
}

func (c *OffersController) Create(w http.ResponseWriter, r *http.Request) {
	var in offers.CreateOfferInput
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	offer, err := c.offers.CreateOffer(r.Context(), in)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusCreated, offer)
}

func (c *OffersController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "offerID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	var in offers.UpdateOfferInput
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	offer, err := c.offers.UpdateOffer(r.Context(), id, in)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, offer)
}

func (c *OffersController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "offerID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	if err := c.offers.DeleteOffer(r.Context(), id); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteMessage(w, http.StatusOK, "offer deleted")
}
