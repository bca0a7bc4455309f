package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/rakibuldev/piprapay-gobilling/internal/services"
)

type TransactionHandler struct {
	service *services.TransactionService
	secret  []byte
}

func NewTransactionHandler(service *services.TransactionService, secret []byte) *TransactionHandler {
	return &TransactionHandler{service: service, secret: secret}
}

func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, h.secret); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusUnauthorized)
		return
	}

	transactions, err := h.service.ListTransactions(r.Context())
	if err != nil {
		log.Printf("Failed to fetch transactions: %v", err)
		http.Error(w, `{"error":"Failed to fetch transactions"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(transactions); err != nil {
		log.Printf("Failed to encode transactions: %v", err)
		http.Error(w, `{"error":"Failed to encode response"}`, http.StatusInternalServerError)
	}
}
