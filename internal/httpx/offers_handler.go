package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-freelance-orders/internal/market"
)

type offerBody struct {
	OrderID    *int64 `json:"order_id" validate:"required"`
	ExecutorID *int64 `json:"executor_id" validate:"required"`
}

func (b offerBody) offer(id int64) market.Offer {
	return market.Offer{ID: id, OrderID: *b.OrderID, ExecutorID: *b.ExecutorID}
}

func (h *Handler) listOffers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	offers, err := h.Repo.ListOffers(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (h *Handler) createOffer(w http.ResponseWriter, r *http.Request) {
	var body offerBody
	if !h.decode(w, r, &body) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	o := body.offer(0)
	if err := h.Repo.CreateOffer(ctx, &o); err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(ctx, r, market.EventEntityCreated, market.EntityOffer, o.ID, o)
	created(w, "/offers", o.ID)
}

func (h *Handler) getOffer(w http.ResponseWriter, r *http.Request) {
	serveItem(h, w, r, market.EntityOffer, h.Repo.GetOffer)
}

func (h *Handler) updateOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var body offerBody
	if !h.decode(w, r, &body) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	o := body.offer(id)
	if err := h.Repo.UpdateOffer(ctx, &o); err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(ctx, r, market.EventEntityUpdated, market.EntityOffer, id, o)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	if err := h.Repo.DeleteOffer(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(ctx, r, market.EventEntityDeleted, market.EntityOffer, id, nil)
	w.WriteHeader(http.StatusNoContent)
}
