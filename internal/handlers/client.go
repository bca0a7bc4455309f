package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/rakibuldev/piprapay-gobilling/internal/models"
	"github.com/rakibuldev/piprapay-gobilling/internal/services"
)

type ClientHandler struct {
	service *services.ClientService
	secret  []byte
}

func NewClientHandler(service *services.ClientService, secret []byte) *ClientHandler {
	return &ClientHandler{service: service, secret: secret}
}

func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, h.secret); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusUnauthorized)
		return
	}

	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if client.Email == "" {
		http.Error(w, `{"error":"email is required"}`, http.StatusBadRequest)
		return
	}

	id, err := h.service.CreateClient(r.Context(), &client)
	if err != nil {
		log.Printf("Failed to create client: %v", err)
		http.Error(w, `{"error":"Failed to create client"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}
