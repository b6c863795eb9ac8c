package gateway

import (
	"context"
	"strconv"
	"strings"
	"time"

	"donation-engine/internal/apperr"
	"donation-engine/internal/config"
	"donation-engine/internal/model"

	"github.com/google/uuid"
)

// payuAdapter covers the provider that confirms payments with a
// server-to-server form POST instead of a signed JSON callback. There is no
// order API on this path: orders are local transaction references handed to
// the hosted checkout form.
type payuAdapter struct {
	merchantKey string
	salt        string
}

func NewPayU(cfg *config.PayU) Adapter {
	return &payuAdapter{
		merchantKey: cfg.MerchantKey,
		salt:        cfg.Salt,
	}
}

func (a *payuAdapter) Name() string { return model.GatewayPayU }

func (a *payuAdapter) CreateOrder(_ context.Context, req OrderRequest) (*OrderRecord, error) {
	if a.merchantKey == "" {
		return nil, apperr.ErrGatewayNotConfigured
	}

	return &OrderRecord{
		OrderID:  "PAYU-" + uuid.New().String(),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}, nil
}

// VerifySignature always fails: this provider has no signed triple. Callbacks
// go through ValidateCallback instead.
func (a *payuAdapter) VerifySignature(_, _, _ string) bool { return false }

func (a *payuAdapter) FetchPayment(_ context.Context, _ string) (*PaymentRecord, error) {
	return nil, apperr.ErrGatewayUnsupported
}

func (a *payuAdapter) ListPayments(_ context.Context, _, _ time.Time, _, _ int) ([]PaymentRecord, error) {
	return nil, apperr.ErrGatewayUnsupported
}

// ValidateCallback checks the posted status fields. Amount equality against
// the stored donation is the orchestrator's job since the adapter holds no
// donation state.
func (a *payuAdapter) ValidateCallback(form map[string][]string) (*CallbackResult, error) {
	get := func(key string) string {
		if v, ok := form[key]; ok && len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	txnID := get("txnid")
	if txnID == "" {
		return nil, apperr.Validation("txnid", "missing transaction id")
	}

	rawStatus := strings.ToLower(get("status"))
	if rawStatus == "" {
		return nil, apperr.Validation("status", "missing payment status")
	}

	var status string
	switch rawStatus {
	case "success":
		status = model.StatusCompleted
	case "pending", "in progress":
		status = model.StatusPending
	default:
		status = model.StatusFailed
	}

	amount := 0
	if raw := get("amount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperr.Validation("amount", "unparseable amount")
		}
		amount = int(parsed)
	}

	return &CallbackResult{
		TxnID:     txnID,
		PaymentID: get("mihpayid"),
		Amount:    amount,
		Status:    status,
		RawStatus: rawStatus,
		Method:    get("mode"),
	}, nil
}
