package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(apiURL string) Config {
	return Config{APIKey: "secret-key", APIURL: apiURL, Currency: "BDT"}
}

func TestCreateCharge(t *testing.T) {
	var gotCharge ChargeRequest
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/create-charge", r.URL.Path)
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotCharge))
		json.NewEncoder(w).Encode(map[string]string{"pp_url": "https://pay.example.com/checkout/abc"})
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	url, err := client.CreateCharge(context.Background(), ChargeRequest{
		FullName:    "A B",
		EmailMobile: "e@x.com",
		Amount:      "10.00",
		Currency:    "BDT",
		Metadata:    ChargeMetadata{InvoiceID: "42"},
		ReturnType:  "POST",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/checkout/abc", url)

	assert.Equal(t, "secret-key", gotHeaders.Get("mh-piprapay-api-key"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "application/json", gotHeaders.Get("Accept"))
	assert.Equal(t, "A B", gotCharge.FullName)
	assert.Equal(t, "10.00", gotCharge.Amount)
	assert.Equal(t, "42", gotCharge.Metadata.InvoiceID)
}

func TestCreateChargeMissingURL(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"gateway message", `{"status":false,"message":"Invalid amount"}`, "Invalid amount"},
		{"no message", `{}`, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewClient(testConfig(server.URL))
			require.NoError(t, err)

			_, err = client.CreateCharge(context.Background(), ChargeRequest{})
			var gwErr *GatewayError
			require.ErrorAs(t, err, &gwErr)
			assert.Contains(t, gwErr.Message, tt.wantMsg)
		})
	}
}

func TestVerifyPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/verify-payments", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pp_123", body["pp_id"])
		// amount arrives as a bare number here
		w.Write([]byte(`{"status":"completed","transaction_id":"TX9","amount":10.50,"payment_method":"bkash","metadata":{"invoiceid":"42"}}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	verify, err := client.VerifyPayment(context.Background(), "pp_123")
	require.NoError(t, err)
	assert.Equal(t, "completed", verify.Status)
	assert.Equal(t, "TX9", verify.TransactionID)
	assert.Equal(t, Decimal("10.5"), verify.Amount)
	assert.Equal(t, "bkash", verify.PaymentMethod)
	assert.Equal(t, "42", verify.Metadata.InvoiceID)
}

func TestVerifyPaymentStringAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"completed","amount":"25.00"}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	verify, err := client.VerifyPayment(context.Background(), "pp_123")
	require.NoError(t, err)
	assert.Equal(t, Decimal("25.00"), verify.Amount)
}

func TestVerifyPaymentInvalidResponse(t *testing.T) {
	for _, body := range []string{`{}`, ``, `null`} {
		t.Run("body="+body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			client, err := NewClient(testConfig(server.URL))
			require.NoError(t, err)

			_, err = client.VerifyPayment(context.Background(), "pp_123")
			var gwErr *GatewayError
			assert.ErrorAs(t, err, &gwErr)
		})
	}
}

func TestVerifyPaymentMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway exploded</html>"))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.VerifyPayment(context.Background(), "pp_123")
	var connErr *ConnectionError
	assert.ErrorAs(t, err, &connErr)
}

func TestConnectionError(t *testing.T) {
	client, err := NewClient(testConfig("http://127.0.0.1:1"))
	require.NoError(t, err)

	_, err = client.CreateCharge(context.Background(), ChargeRequest{})
	var connErr *ConnectionError
	assert.ErrorAs(t, err, &connErr)
}
