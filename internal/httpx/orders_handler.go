package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-freelance-orders/internal/market"
)

// orderBody dates are YYYY-MM-DD.
type orderBody struct {
	Name        *string      `json:"name" validate:"required"`
	Description *string      `json:"description" validate:"required"`
	StartDate   *market.Date `json:"start_date" validate:"required"`
	EndDate     *market.Date `json:"end_date" validate:"required"`
	Address     *string      `json:"address" validate:"required"`
	Price       *int         `json:"price" validate:"required"`
	CustomerID  *int64       `json:"customer_id" validate:"required"`
	ExecutorID  *int64       `json:"executor_id" validate:"required"`
}

func (b orderBody) order(id int64) market.Order {
	return market.Order{
		ID:          id,
		Name:        *b.Name,
		Description: *b.Description,
		StartDate:   *b.StartDate,
		EndDate:     *b.EndDate,
		Address:     *b.Address,
		Price:       *b.Price,
		CustomerID:  *b.CustomerID,
		ExecutorID:  *b.ExecutorID,
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	orders, err := h.Repo.ListOrders(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var body orderBody
	if !h.decode(w, r, &body) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	o := body.order(0)
	if err := h.Repo.CreateOrder(ctx, &o); err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(ctx, r, market.EventEntityCreated, market.EntityOrder, o.ID, o)
	created(w, "/orders", o.ID)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	serveItem(h, w, r, market.EntityOrder, h.Repo.GetOrder)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var body orderBody
	if !h.decode(w, r, &body) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	o := body.order(id)
	if err := h.Repo.UpdateOrder(ctx, &o); err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(ctx, r, market.EventEntityUpdated, market.EntityOrder, id, o)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	if err := h.Repo.DeleteOrder(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(ctx, r, market.EventEntityDeleted, market.EntityOrder, id, nil)
	w.WriteHeader(http.StatusNoContent)
}
