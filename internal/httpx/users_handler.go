package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-freelance-orders/internal/market"
)

// userBody is the POST/PUT body. Every field is required; PUT replaces them all.
type userBody struct {
	FirstName *string `json:"first_name" validate:"required"`
	LastName  *string `json:"last_name" validate:"required"`
	Age       *int    `json:"age" validate:"required"`
	Email     *string `json:"email" validate:"required"`
	Role      *string `json:"role" validate:"required"`
	Phone     *string `json:"phone" validate:"required"`
}

func (b userBody) user(id int64) market.User {
	return market.User{
		ID:        id,
		FirstName: *b.FirstName,
		LastName:  *b.LastName,
		Age:       *b.Age,
		Email:     *b.Email,
		Role:      *b.Role,
		Phone:     *b.Phone,
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	users, err := h.Repo.ListUsers(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var body userBody
	if !h.decode(w, r, &body) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	u := body.user(0)
	if err := h.Repo.CreateUser(ctx, &u); err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(ctx, r, market.EventEntityCreated, market.EntityUser, u.ID, u)
	created(w, "/users", u.ID)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	serveItem(h, w, r, market.EntityUser, h.Repo.GetUser)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var body userBody
	if !h.decode(w, r, &body) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	u := body.user(id)
	if err := h.Repo.UpdateUser(ctx, &u); err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(ctx, r, market.EventEntityUpdated, market.EntityUser, id, u)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	if err := h.Repo.DeleteUser(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(ctx, r, market.EventEntityDeleted, market.EntityUser, id, nil)
	w.WriteHeader(http.StatusNoContent)
}
