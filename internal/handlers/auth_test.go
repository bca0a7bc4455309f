package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "staff1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestAuthorize(t *testing.T) {
	secret := []byte("configured-secret")

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, secret))
	assert.NoError(t, authorize(req, secret))

	// Tokens signed with any other key, including an empty one, must not pass.
	for _, wrong := range [][]byte{{}, []byte("other-secret")} {
		req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, wrong))
		assert.Error(t, authorize(req, secret))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	assert.Error(t, authorize(req, secret))
}

func TestClientHandlerAuth(t *testing.T) {
	secret := []byte("configured-secret")
	h := NewClientHandler(nil, secret)

	req := httptest.NewRequest(http.MethodPost, "/api/client", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.CreateClient(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/client", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, secret))
	rec = httptest.NewRecorder()
	h.CreateClient(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
