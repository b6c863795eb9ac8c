package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"donation-engine/internal/apperr"
	"donation-engine/internal/config"
	"donation-engine/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRazorpay(baseURL string) Adapter {
	return NewRazorpay(&config.Razorpay{
		BaseAPIURL: baseURL,
		KeyID:      "rzp_test_key",
		KeySecret:  "rzp_test_secret",
	})
}

func signTriple(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	adapter := newTestRazorpay("http://unused")

	orderID := "order_Nxq8zLk2PqR5tA"
	paymentID := "pay_Nxq9BtWm3dYcXe"
	valid := signTriple("rzp_test_secret", orderID, paymentID)

	assert.True(t, adapter.VerifySignature(orderID, paymentID, valid))

	// Any single-character mutation must fail.
	for i := 0; i < len(valid); i++ {
		mutated := []byte(valid)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		assert.False(t, adapter.VerifySignature(orderID, paymentID, string(mutated)),
			"mutation at position %d must not verify", i)
	}

	assert.False(t, adapter.VerifySignature(orderID, paymentID, ""))
	assert.False(t, adapter.VerifySignature("other_order", paymentID, valid))
}

func TestVerifySignatureUnconfigured(t *testing.T) {
	adapter := NewRazorpay(&config.Razorpay{})
	assert.False(t, adapter.VerifySignature("order", "pay", "anything"))
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "rzp_test_key", user)
		require.Equal(t, "rzp_test_secret", pass)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.EqualValues(t, 270000, payload["amount"]) // paise on the wire

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_Nxq8zLk2PqR5tA",
			"amount":   270000,
			"currency": "INR",
			"receipt":  "donation-42",
			"status":   "created",
		})
	}))
	defer srv.Close()

	adapter := newTestRazorpay(srv.URL)
	order, err := adapter.CreateOrder(context.Background(), OrderRequest{
		Amount:   2700,
		Currency: "INR",
		Receipt:  "donation-42",
		Notes:    map[string]string{"seva_name": "Annadanam"},
	})
	require.NoError(t, err)

	assert.Equal(t, "order_Nxq8zLk2PqR5tA", order.OrderID)
	assert.Equal(t, 2700, order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "donation-42", order.Receipt)
}

func TestCreateOrderUnconfigured(t *testing.T) {
	adapter := NewRazorpay(&config.Razorpay{BaseAPIURL: "http://unused"})

	_, err := adapter.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
	assert.ErrorIs(t, err, apperr.ErrGatewayNotConfigured)
}

func TestCreateOrderUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	adapter := newTestRazorpay(srv.URL)
	_, err := adapter.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})

	var gatewayErr *apperr.GatewayAPIError
	require.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, http.StatusBadGateway, gatewayErr.StatusCode)
}

func TestFetchPaymentNormalization(t *testing.T) {
	tests := []struct {
		rawStatus  string
		wantStatus string
	}{
		{"captured", model.StatusCompleted},
		{"authorized", model.StatusPending},
		{"created", model.StatusPending},
		{"refunded", model.StatusRefunded},
		{"failed", model.StatusFailed},
		{"disputed", model.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.rawStatus, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/v1/payments/pay_Nxq9BtWm3dYcXe", r.URL.Path)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"id":         "pay_Nxq9BtWm3dYcXe",
					"order_id":   "order_Nxq8zLk2PqR5tA",
					"amount":     270000,
					"currency":   "INR",
					"status":     tt.rawStatus,
					"method":     "upi",
					"email":      "donor@example.com",
					"contact":    "+919876543210",
					"vpa":        "donor@okicici",
					"created_at": 1714550400,
				})
			}))
			defer srv.Close()

			adapter := newTestRazorpay(srv.URL)
			record, err := adapter.FetchPayment(context.Background(), "pay_Nxq9BtWm3dYcXe")
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, record.Status)
			assert.Equal(t, tt.rawStatus, record.RawStatus)
			assert.Equal(t, 2700, record.Amount)
			assert.Equal(t, "upi", record.Method)
			assert.Equal(t, "donor@okicici", record.VPA)
			assert.Equal(t, time.Unix(1714550400, 0), record.CreatedAt)
		})
	}
}

func TestFetchPaymentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	adapter := newTestRazorpay(srv.URL)
	_, err := adapter.FetchPayment(context.Background(), "pay_missing")

	var gatewayErr *apperr.GatewayAPIError
	require.True(t, errors.As(err, &gatewayErr))
}

func TestListPayments(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "/v1/payments", r.URL.Path)
		require.Equal(t, "1785542400", q.Get("from"))
		require.Equal(t, "1787875200", q.Get("to"))
		require.Equal(t, "100", q.Get("count"))
		require.Equal(t, "0", q.Get("skip"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 2,
			"items": []map[string]interface{}{
				{"id": "pay_one", "amount": 50000, "currency": "INR", "status": "captured"},
				{"id": "pay_two", "amount": 120000, "currency": "INR", "status": "failed"},
			},
		})
	}))
	defer srv.Close()

	adapter := newTestRazorpay(srv.URL)
	records, err := adapter.ListPayments(context.Background(), from, to, 100, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "pay_one", records[0].PaymentID)
	assert.Equal(t, 500, records[0].Amount)
	assert.Equal(t, model.StatusCompleted, records[0].Status)
	assert.Equal(t, model.StatusFailed, records[1].Status)
}
