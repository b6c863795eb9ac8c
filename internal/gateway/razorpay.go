package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"donation-engine/internal/apperr"
	"donation-engine/internal/config"
	"donation-engine/internal/model"
)

type razorpayAdapter struct {
	httpClient *http.Client
	baseAPIURL string
	keyID      string
	keySecret  string
}

func NewRazorpay(cfg *config.Razorpay) Adapter {
	return &razorpayAdapter{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseAPIURL: cfg.BaseAPIURL,
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
	}
}

func (a *razorpayAdapter) Name() string { return model.GatewayRazorpay }

func (a *razorpayAdapter) configured() bool {
	return a.keyID != "" && a.keySecret != ""
}

// Razorpay order payload. Amounts on the wire are paise.
type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayPayment struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	Amount      int    `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Method      string `json:"method"`
	Email       string `json:"email"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
	Bank        string `json:"bank"`
	Wallet      string `json:"wallet"`
	CardID      string `json:"card_id"`
	VPA         string `json:"vpa"`
	CreatedAt   int64  `json:"created_at"`
}

func (a *razorpayAdapter) CreateOrder(ctx context.Context, req OrderRequest) (*OrderRecord, error) {
	if !a.configured() {
		return nil, apperr.ErrGatewayNotConfigured
	}

	payload := map[string]interface{}{
		"amount":   req.Amount * 100,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    req.Notes,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseAPIURL+"/v1/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	httpReq.SetBasicAuth(a.keyID, a.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, &apperr.GatewayAPIError{Gateway: a.Name(), Op: "create order", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperr.GatewayAPIError{Gateway: a.Name(), Op: "create order", StatusCode: resp.StatusCode}
	}

	var order razorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, &apperr.GatewayAPIError{Gateway: a.Name(), Op: "create order", Err: err}
	}

	return &OrderRecord{
		OrderID:  order.ID,
		Amount:   order.Amount / 100,
		Currency: order.Currency,
		Receipt:  order.Receipt,
	}, nil
}

// VerifySignature checks the HMAC-SHA256 of "orderID|paymentID" under the key
// secret. hmac.Equal keeps the comparison constant-time.
func (a *razorpayAdapter) VerifySignature(orderID, paymentID, signature string) bool {
	if !a.configured() {
		return false
	}

	mac := hmac.New(sha256.New, []byte(a.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func (a *razorpayAdapter) FetchPayment(ctx context.Context, paymentID string) (*PaymentRecord, error) {
	if !a.configured() {
		return nil, apperr.ErrGatewayNotConfigured
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseAPIURL+"/v1/payments/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	httpReq.SetBasicAuth(a.keyID, a.keySecret)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, &apperr.GatewayAPIError{Gateway: a.Name(), Op: "fetch payment", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperr.GatewayAPIError{Gateway: a.Name(), Op: "fetch payment", StatusCode: resp.StatusCode}
	}

	var payment razorpayPayment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, &apperr.GatewayAPIError{Gateway: a.Name(), Op: "fetch payment", Err: err}
	}

	record := a.normalize(&payment)
	return &record, nil
}

func (a *razorpayAdapter) ListPayments(ctx context.Context, from, to time.Time, count, skip int) ([]PaymentRecord, error) {
	if !a.configured() {
		return nil, apperr.ErrGatewayNotConfigured
	}

	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", strconv.FormatInt(from.Unix(), 10))
	}
	if !to.IsZero() {
		q.Set("to", strconv.FormatInt(to.Unix(), 10))
	}
	q.Set("count", strconv.Itoa(count))
	q.Set("skip", strconv.Itoa(skip))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseAPIURL+"/v1/payments?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	httpReq.SetBasicAuth(a.keyID, a.keySecret)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, &apperr.GatewayAPIError{Gateway: a.Name(), Op: "list payments", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperr.GatewayAPIError{Gateway: a.Name(), Op: "list payments", StatusCode: resp.StatusCode}
	}

	var page struct {
		Count int               `json:"count"`
		Items []razorpayPayment `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &apperr.GatewayAPIError{Gateway: a.Name(), Op: "list payments", Err: err}
	}

	records := make([]PaymentRecord, len(page.Items))
	for i := range page.Items {
		records[i] = a.normalize(&page.Items[i])
	}
	return records, nil
}

// normalize maps Razorpay's status vocabulary onto the engine's lifecycle:
// captured is the terminal success state; authorized/created are provisional.
func (a *razorpayAdapter) normalize(p *razorpayPayment) PaymentRecord {
	var status string
	switch p.Status {
	case "captured":
		status = model.StatusCompleted
	case "authorized", "created":
		status = model.StatusPending
	case "refunded":
		status = model.StatusRefunded
	default:
		status = model.StatusFailed
	}

	return PaymentRecord{
		PaymentID:   p.ID,
		OrderID:     p.OrderID,
		Amount:      p.Amount / 100,
		Currency:    p.Currency,
		Status:      status,
		RawStatus:   p.Status,
		Method:      p.Method,
		Email:       p.Email,
		Contact:     p.Contact,
		Description: p.Description,
		Bank:        p.Bank,
		Wallet:      p.Wallet,
		CardID:      p.CardID,
		VPA:         p.VPA,
		CreatedAt:   time.Unix(p.CreatedAt, 0),
	}
}
