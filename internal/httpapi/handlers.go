package httpapi

import (
	"net/http"

	"github.com/goliatone/go-storefront/model"
	"github.com/goliatone/go-storefront/stats"
	"github.com/google/uuid"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Products.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, products, "")
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.validate(false); err != nil {
		h.writeError(w, r, err)
		return
	}
	var p model.Product
	req.applyTo(&p)
	if _, err := h.svc.Products.Save(r.Context(), &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, p, "")
}

func (h *Handler) replaceProduct(w http.ResponseWriter, r *http.Request) {
	h.updateProduct(w, r, false)
}

func (h *Handler) patchProduct(w http.ResponseWriter, r *http.Request) {
	h.updateProduct(w, r, true)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request, partial bool) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.validate(partial); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.svc.Products.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req.applyTo(&p)
	if _, err := h.svc.Products.Save(r.Context(), &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, p, "")
}

func (h *Handler) removeProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Products.Remove(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, "", "")
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.Customers.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, customers, "")
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.validate(false); err != nil {
		h.writeError(w, r, err)
		return
	}
	var c model.Customer
	req.applyTo(&c)
	if _, err := h.svc.Customers.Save(r.Context(), &c); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, c, "")
}

func (h *Handler) replaceCustomer(w http.ResponseWriter, r *http.Request) {
	h.updateCustomer(w, r, false)
}

func (h *Handler) patchCustomer(w http.ResponseWriter, r *http.Request) {
	h.updateCustomer(w, r, true)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request, partial bool) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.validate(partial); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.svc.Customers.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req.applyTo(&c)
	if _, err := h.svc.Customers.Save(r.Context(), &c); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, c, "")
}

func (h *Handler) removeCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Customers.Remove(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, "", "")
}

func (h *Handler) showCart(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	snapshot, err := h.svc.Carts.Get(r.Context(), customerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, snapshot, "")
}

func (h *Handler) submitCart(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ids, err := decodeCart(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	snapshot, created, err := h.svc.Carts.Submit(r.Context(), customerID, ids)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond(w, r, status, snapshot, "")
}

func (h *Handler) updateCart(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cartID, err := pathID(r, "cartId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ids, err := decodeCart(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	snapshot, err := h.svc.Carts.Update(r.Context(), customerID, cartID, ids)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, snapshot, "")
}

func (h *Handler) removeCart(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cartID, err := pathID(r, "cartId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Carts.Remove(r.Context(), customerID, cartID); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, "", "")
}

func decodeCart(r *http.Request) ([]uuid.UUID, error) {
	var req cartRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	return req.productIDs()
}

func (h *Handler) customerStatistics(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	computed, err := h.svc.Statistics.ForCustomer(r.Context(), customerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	record, err := stats.Flatten(r.Context(), computed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, record, "")
}

func (h *Handler) allStatistics(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Statistics.All(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, records, "")
}
