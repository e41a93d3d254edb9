package api

import (
	"net/http"
	"time"

	"github.com/Picces04/ToyStore-Client/internal/checkout"
	"github.com/Picces04/ToyStore-Client/internal/session"
)

// SignInRequest is the result of a login against the storefront API, handed
// over by the client.
type SignInRequest struct {
	User        session.User `json:"user"`
	Token       string       `json:"token"`
	TokenExpiry *time.Time   `json:"tokenExpiry,omitempty"`
}

// Session Handlers

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, sf.Session.Snapshot(r.Context()))
}

func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req SignInRequest
	if err := decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	var expiry time.Time
	if req.TokenExpiry != nil {
		expiry = *req.TokenExpiry
	}
	if err := sf.SignIn(r.Context(), req.User, req.Token, expiry); err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sf.Session.Snapshot(r.Context()))
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	if err := sf.Logout(r.Context()); err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sf.Session.Snapshot(r.Context()))
}

// Checkout Handlers

// Checkout validates the form against the cart and returns an order draft.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var form checkout.Form
	if err := decode(r, &form); err != nil {
		h.respondErr(w, r, err)
		return
	}

	draft, err := sf.Checkout(form)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, draft)
}
