package handlers

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakibuldev/piprapay-gobilling/internal/adapter"
	"github.com/rakibuldev/piprapay-gobilling/internal/gateway"
	"github.com/rakibuldev/piprapay-gobilling/internal/models"
)

type fakeAdapter struct {
	processErr error
	lastTxID   string
	lastNotif  adapter.Notification
}

func (f *fakeAdapter) RenderCheckout(ctx context.Context, invoiceID string) (template.HTML, error) {
	return "", nil
}

func (f *fakeAdapter) ProcessNotification(ctx context.Context, transactionID string, n adapter.Notification) error {
	f.lastTxID = transactionID
	f.lastNotif = n
	return f.processErr
}

type fakeRecorder struct {
	rejectedID     string
	rejectedReason string
}

func (f *fakeRecorder) CreateTransaction(ctx context.Context, transaction *models.Transaction) (string, error) {
	return "tx1", nil
}

func (f *fakeRecorder) MarkRejected(ctx context.Context, id string, reason string) error {
	f.rejectedID = id
	f.rejectedReason = reason
	return nil
}

func postIPN(t *testing.T, h *IPNHandler, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ipn", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.HandleIPN(rec, req)
	return rec
}

func TestHandleIPNStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"invalid payload", adapter.ErrInvalidPayload, http.StatusBadRequest},
		{"missing invoice id", adapter.ErrMissingInvoiceID, http.StatusBadRequest},
		{"duplicate", adapter.ErrDuplicateNotification, http.StatusConflict},
		{"not completed", adapter.ErrPaymentNotCompleted, http.StatusPaymentRequired},
		{"not found", fmt.Errorf("invoice 42: %w", models.ErrNotFound), http.StatusNotFound},
		{"gateway error", &gateway.GatewayError{Op: "verify-payments", Message: "invalid verification response"}, http.StatusBadGateway},
		{"connection error", &gateway.ConnectionError{Op: "verify-payments", Err: fmt.Errorf("refused")}, http.StatusBadGateway},
		{"unexpected", fmt.Errorf("mongo down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAdapter{processErr: tt.err}
			recorder := &fakeRecorder{}
			h := NewIPNHandler(fake, recorder)

			rec := postIPN(t, h, "application/json", `{"pp_id":"pp_1"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "tx1", fake.lastTxID)

			if tt.err != nil {
				assert.Equal(t, "tx1", recorder.rejectedID)
				assert.Equal(t, tt.err.Error(), recorder.rejectedReason)
			} else {
				assert.Empty(t, recorder.rejectedID)
			}
		})
	}
}

func TestHandleIPNJSONBodyPassedRaw(t *testing.T) {
	fake := &fakeAdapter{}
	h := NewIPNHandler(fake, &fakeRecorder{})

	body := `{"pp_id":"pp_1","status":"completed","metadata":{"invoiceid":"42"}}`
	rec := postIPN(t, h, "application/json", body)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, fake.lastNotif.Post)
	assert.JSONEq(t, body, string(fake.lastNotif.RawBody))
}

func TestHandleIPNFormBodyPreParsed(t *testing.T) {
	fake := &fakeAdapter{}
	h := NewIPNHandler(fake, &fakeRecorder{})

	form := url.Values{}
	form.Set("pp_id", "pp_1")
	form.Set("status", "completed")
	form.Set("metadata[invoiceid]", "42")
	rec := postIPN(t, h, "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "pp_1", fake.lastNotif.Post["pp_id"])
	assert.Equal(t, "42", fake.lastNotif.Post["metadata[invoiceid]"])
	assert.Empty(t, fake.lastNotif.RawBody)
}
