package gateway

import (
	"context"
	"net/url"
	"testing"
	"time"

	"donation-engine/internal/apperr"
	"donation-engine/internal/config"
	"donation-engine/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayU() Adapter {
	return NewPayU(&config.PayU{MerchantKey: "payu_key", Salt: "payu_salt"})
}

func TestPayUCreateOrder(t *testing.T) {
	adapter := newTestPayU()

	order, err := adapter.CreateOrder(context.Background(), OrderRequest{
		Amount:   1500,
		Currency: "INR",
		Receipt:  "donation-7",
	})
	require.NoError(t, err)

	assert.Contains(t, order.OrderID, "PAYU-")
	assert.Equal(t, 1500, order.Amount)
	assert.Equal(t, "donation-7", order.Receipt)

	second, err := adapter.CreateOrder(context.Background(), OrderRequest{Amount: 1500, Currency: "INR"})
	require.NoError(t, err)
	assert.NotEqual(t, order.OrderID, second.OrderID)
}

func TestPayUCreateOrderUnconfigured(t *testing.T) {
	adapter := NewPayU(&config.PayU{})
	_, err := adapter.CreateOrder(context.Background(), OrderRequest{Amount: 100})
	assert.ErrorIs(t, err, apperr.ErrGatewayNotConfigured)
}

func TestPayUHasNoSignedTriple(t *testing.T) {
	adapter := newTestPayU()
	assert.False(t, adapter.VerifySignature("order", "pay", "sig"))

	_, err := adapter.FetchPayment(context.Background(), "pay")
	assert.ErrorIs(t, err, apperr.ErrGatewayUnsupported)

	_, err = adapter.ListPayments(context.Background(), time.Time{}, time.Time{}, 10, 0)
	assert.ErrorIs(t, err, apperr.ErrGatewayUnsupported)
}

func TestPayUValidateCallback(t *testing.T) {
	validator := newTestPayU().(CallbackValidator)

	tests := []struct {
		name       string
		form       url.Values
		wantStatus string
		wantErr    bool
	}{
		{
			name: "success",
			form: url.Values{
				"txnid":    {"PAYU-abc"},
				"mihpayid": {"403993715527"},
				"status":   {"success"},
				"amount":   {"2700.00"},
				"mode":     {"UPI"},
			},
			wantStatus: model.StatusCompleted,
		},
		{
			name: "pending",
			form: url.Values{
				"txnid":  {"PAYU-abc"},
				"status": {"pending"},
				"amount": {"2700.00"},
			},
			wantStatus: model.StatusPending,
		},
		{
			name: "failure maps to failed",
			form: url.Values{
				"txnid":  {"PAYU-abc"},
				"status": {"failure"},
				"amount": {"2700.00"},
			},
			wantStatus: model.StatusFailed,
		},
		{
			name:    "missing txnid",
			form:    url.Values{"status": {"success"}},
			wantErr: true,
		},
		{
			name:    "missing status",
			form:    url.Values{"txnid": {"PAYU-abc"}},
			wantErr: true,
		},
		{
			name: "unparseable amount",
			form: url.Values{
				"txnid":  {"PAYU-abc"},
				"status": {"success"},
				"amount": {"not-a-number"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.ValidateCallback(tt.form)
			if tt.wantErr {
				var validationErr *apperr.ValidationError
				require.ErrorAs(t, err, &validationErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, "PAYU-abc", result.TxnID)
		})
	}
}

func TestPayUValidateCallbackAmount(t *testing.T) {
	validator := newTestPayU().(CallbackValidator)

	result, err := validator.ValidateCallback(url.Values{
		"txnid":  {"PAYU-abc"},
		"status": {"success"},
		"amount": {"2700.00"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2700, result.Amount)
}
