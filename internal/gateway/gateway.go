// Package gateway normalizes the external payment providers behind one
// adapter contract. Raw provider payloads never leave this package.
package gateway

import (
	"context"
	"time"

	"donation-engine/internal/apperr"
)

// OrderRequest carries everything a provider needs to reserve an amount.
// Notes round-trip donor context through the payment redirect.
type OrderRequest struct {
	Amount   int
	Currency string
	Receipt  string
	Notes    map[string]string
}

// OrderRecord is the normalized result of order creation.
type OrderRecord struct {
	OrderID  string
	Amount   int
	Currency string
	Receipt  string
}

// PaymentRecord is the normalized shape of one provider-side payment.
// Status is always one of the model.Status* values; RawStatus keeps the
// provider's own vocabulary for audit notes.
type PaymentRecord struct {
	PaymentID   string
	OrderID     string
	Amount      int
	Currency    string
	Status      string
	RawStatus   string
	Method      string
	Email       string
	Contact     string
	Description string
	Bank        string
	Wallet      string
	CardID      string
	VPA         string
	CreatedAt   time.Time
}

type Adapter interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderRecord, error)
	// VerifySignature reports whether the signature covers (orderID, paymentID)
	// under the provider secret. A mismatch is a plain false, not an error.
	VerifySignature(orderID, paymentID, signature string) bool
	FetchPayment(ctx context.Context, paymentID string) (*PaymentRecord, error)
	// ListPayments returns one page of the provider's payment ledger for the
	// window. The caller drives pagination via count/skip.
	ListPayments(ctx context.Context, from, to time.Time, count, skip int) ([]PaymentRecord, error)
}

// CallbackResult is the normalized shape of a server-to-server form callback.
type CallbackResult struct {
	TxnID     string
	PaymentID string
	Amount    int
	Status    string
	RawStatus string
	Method    string
}

// CallbackValidator is implemented by providers that confirm payments with a
// posted form instead of a signed JSON triple.
type CallbackValidator interface {
	ValidateCallback(form map[string][]string) (*CallbackResult, error)
}

// Registry holds the configured adapters, built once at process start.
type Registry struct {
	adapters    map[string]Adapter
	defaultName string
}

func NewRegistry(defaultName string, adapters ...Adapter) *Registry {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	return &Registry{adapters: m, defaultName: defaultName}
}

func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, apperr.ErrGatewayUnsupported
	}
	return a, nil
}

func (r *Registry) Default() Adapter {
	return r.adapters[r.defaultName]
}
