package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/rakibuldev/piprapay-gobilling/internal/adapter"
	"github.com/rakibuldev/piprapay-gobilling/internal/gateway"
	"github.com/rakibuldev/piprapay-gobilling/internal/models"
)

// TransactionRecorder records the inbound transaction row every IPN delivery
// is applied against, and the outcome when the delivery is not applied.
type TransactionRecorder interface {
	CreateTransaction(ctx context.Context, transaction *models.Transaction) (string, error)
	MarkRejected(ctx context.Context, id string, reason string) error
}

type IPNHandler struct {
	adapter      adapter.Adapter
	transactions TransactionRecorder
}

func NewIPNHandler(a adapter.Adapter, transactions TransactionRecorder) *IPNHandler {
	return &IPNHandler{adapter: a, transactions: transactions}
}

// HandleIPN receives one gateway notification. A non-2xx response tells the
// gateway the delivery was not applied; redelivery is its responsibility.
func (h *IPNHandler) HandleIPN(w http.ResponseWriter, r *http.Request) {
	n := adapter.Notification{}
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseForm(); err == nil && len(r.PostForm) > 0 {
			post := make(map[string]any, len(r.PostForm))
			for key := range r.PostForm {
				post[key] = r.PostForm.Get(key)
			}
			n.Post = post
		}
	} else {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, `{"error":"Failed to read request body"}`, http.StatusBadRequest)
			return
		}
		n.RawBody = body
	}

	transactionID, err := h.transactions.CreateTransaction(r.Context(), &models.Transaction{
		Gateway: "piprapay",
		Status:  "received",
	})
	if err != nil {
		log.Printf("Failed to create transaction for IPN: %v", err)
		http.Error(w, `{"error":"Failed to record transaction"}`, http.StatusInternalServerError)
		return
	}

	if err := h.adapter.ProcessNotification(r.Context(), transactionID, n); err != nil {
		log.Printf("IPN processing failed for transaction %s: %v", transactionID, err)
		if markErr := h.transactions.MarkRejected(r.Context(), transactionID, err.Error()); markErr != nil {
			log.Printf("Failed to mark transaction %s rejected: %v", transactionID, markErr)
		}
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), ipnStatus(err))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func ipnStatus(err error) int {
	var gwErr *gateway.GatewayError
	var connErr *gateway.ConnectionError
	switch {
	case errors.Is(err, adapter.ErrInvalidPayload), errors.Is(err, adapter.ErrMissingInvoiceID):
		return http.StatusBadRequest
	case errors.Is(err, adapter.ErrDuplicateNotification):
		return http.StatusConflict
	case errors.Is(err, adapter.ErrPaymentNotCompleted):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &gwErr), errors.As(err, &connErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
