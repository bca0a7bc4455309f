package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rakibuldev/piprapay-gobilling/internal/models"
	"github.com/rakibuldev/piprapay-gobilling/internal/services"
)

type InvoiceHandler struct {
	invoices *services.InvoiceService
	clients  *services.ClientService
	secret   []byte
}

func NewInvoiceHandler(invoices *services.InvoiceService, clients *services.ClientService, secret []byte) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, clients: clients, secret: secret}
}

// CreateInvoice creates an invoice for an existing client, snapshotting the
// client's name and email into the invoice record.
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, h.secret); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusUnauthorized)
		return
	}

	var req struct {
		ClientID string `json:"client_id"`
		Total    string `json:"total"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.ClientID == "" || req.Total == "" {
		http.Error(w, `{"error":"client_id and total are required"}`, http.StatusBadRequest)
		return
	}

	client, err := h.clients.GetClient(r.Context(), req.ClientID)
	if err != nil {
		log.Printf("Failed to fetch client %s: %v", req.ClientID, err)
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, `{"error":"client not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"Failed to fetch client"}`, http.StatusInternalServerError)
		return
	}

	clientObjID, _ := primitive.ObjectIDFromHex(req.ClientID)
	invoice := &models.Invoice{
		ClientID: clientObjID,
		Client: models.InvoiceClient{
			FirstName: client.FirstName,
			LastName:  client.LastName,
			Email:     client.Email,
		},
		Total:    req.Total,
		Currency: req.Currency,
	}

	id, err := h.invoices.CreateInvoice(r.Context(), invoice)
	if err != nil {
		log.Printf("Failed to create invoice: %v", err)
		http.Error(w, fmt.Sprintf(`{"error":"Failed to create invoice: %v"}`, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}
