package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rakibuldev/piprapay-gobilling/internal/adapter"
	"github.com/rakibuldev/piprapay-gobilling/internal/gateway"
	"github.com/rakibuldev/piprapay-gobilling/internal/models"
)

type CheckoutHandler struct {
	adapter adapter.Adapter
}

func NewCheckoutHandler(a adapter.Adapter) *CheckoutHandler {
	return &CheckoutHandler{adapter: a}
}

// RenderCheckout serves the redirect form for an invoice. Each request
// creates a fresh charge on the gateway.
func (h *CheckoutHandler) RenderCheckout(w http.ResponseWriter, r *http.Request) {
	invoiceID := mux.Vars(r)["invoiceID"]
	if invoiceID == "" {
		http.Error(w, `{"error":"Invoice ID is required"}`, http.StatusBadRequest)
		return
	}

	html, err := h.adapter.RenderCheckout(r.Context(), invoiceID)
	if err != nil {
		log.Printf("Failed to render checkout for invoice %s: %v", invoiceID, err)
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), checkoutStatus(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func checkoutStatus(err error) int {
	var gwErr *gateway.GatewayError
	var connErr *gateway.ConnectionError
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &gwErr), errors.As(err, &connErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
