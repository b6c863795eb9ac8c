package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"donation-engine/internal/config"
	"donation-engine/internal/gateway"
	"donation-engine/internal/handler"
	"donation-engine/internal/model"
	"donation-engine/internal/notify"
	"donation-engine/internal/receipt"
	"donation-engine/internal/repository"
	"donation-engine/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type noopAdapter struct{ name string }

func (a *noopAdapter) Name() string { return a.name }
func (a *noopAdapter) CreateOrder(_ context.Context, req gateway.OrderRequest) (*gateway.OrderRecord, error) {
	return &gateway.OrderRecord{OrderID: "order_noop", Amount: req.Amount, Currency: req.Currency}, nil
}
func (a *noopAdapter) VerifySignature(_, _, _ string) bool { return false }
func (a *noopAdapter) FetchPayment(_ context.Context, _ string) (*gateway.PaymentRecord, error) {
	return nil, nil
}
func (a *noopAdapter) ListPayments(_ context.Context, _, _ time.Time, _, _ int) ([]gateway.PaymentRecord, error) {
	return nil, nil
}

type noopMailer struct{}

func (noopMailer) Send(_ *model.Donation, _ []byte) notify.DeliveryResult {
	return notify.DeliveryResult{Delivered: true}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Donation{}))

	registry := gateway.NewRegistry(model.GatewayRazorpay, &noopAdapter{name: model.GatewayRazorpay})
	repo := repository.NewDonationRepository(db)
	builder := receipt.NewBuilder(&config.Receipt{NumberPrefix: "SEVA", OrgName: "Seva Charitable Trust"})

	verification := service.NewVerificationService(registry, repo, builder, noopMailer{})
	reconciliation := service.NewReconciliationService(registry, repo)

	return NewServer(handler.NewDonationHandler(verification, reconciliation, repo, builder))
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// The fixed callback path must never be swallowed by a wildcard resource
// route.
func TestCallbackRouteNotShadowed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/payu/callback", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reachable")
}

func TestStatsRouteNotShadowedByID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/donations/stats", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "totalDonations")
}

func TestUnknownDonationIs404(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/donations/6fa459ea-ee8a-4ca4-894e-db77e160355e", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
