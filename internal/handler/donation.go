package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"donation-engine/internal/apperr"
	"donation-engine/internal/model"
	"donation-engine/internal/repository"
	"donation-engine/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type DonationHandler struct {
	verification   *service.VerificationService
	reconciliation *service.ReconciliationService
	repo           repository.DonationRepository
	renderer       service.Renderer
}

func NewDonationHandler(
	verification *service.VerificationService,
	reconciliation *service.ReconciliationService,
	repo repository.DonationRepository,
	renderer service.Renderer,
) *DonationHandler {
	return &DonationHandler{
		verification:   verification,
		reconciliation: reconciliation,
		repo:           repo,
		renderer:       renderer,
	}
}

// httpError maps the engine's error taxonomy onto transport status codes.
func httpError(err error) error {
	var validationErr *apperr.ValidationError
	var gatewayErr *apperr.GatewayAPIError

	switch {
	case errors.As(err, &validationErr), errors.Is(err, apperr.ErrSignatureMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrGatewayNotConfigured):
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	case errors.Is(err, apperr.ErrGatewayUnsupported):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &gatewayErr):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *DonationHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.verification.CreateOrder(ctx, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *DonationHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.verification.VerifyPayment(ctx, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// PayUCallback is the provider's server-to-server confirmation POST.
func (h *DonationHandler) PayUCallback(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form payload")
	}

	result, err := h.verification.HandleProviderCallback(ctx, model.GatewayPayU, form)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// PayUCallbackProbe answers manual GET checks against the callback path.
func (h *DonationHandler) PayUCallbackProbe(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "payu callback endpoint is reachable; confirmations must be POSTed",
	})
}

type syncRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (h *DonationHandler) Sync(c echo.Context) error {
	ctx := c.Request().Context()

	var req syncRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var from, to time.Time
	var err error
	if req.StartDate != "" {
		if from, err = time.Parse("2006-01-02", req.StartDate); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "startDate must be YYYY-MM-DD")
		}
	}
	if req.EndDate != "" {
		if to, err = time.Parse("2006-01-02", req.EndDate); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "endDate must be YYYY-MM-DD")
		}
		// Include the whole end day.
		to = to.Add(24*time.Hour - time.Second)
	}

	report, err := h.reconciliation.Sync(ctx, model.GatewayRazorpay, from, to)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, report)
}

func (h *DonationHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filter := repository.ListFilter{
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
	}
	if v := c.QueryParam("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.From = t
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.To = t.Add(24*time.Hour - time.Second)
		}
	}
	if v := c.QueryParam("page"); v != "" {
		filter.Page, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("pageSize"); v != "" {
		filter.PageSize, _ = strconv.Atoi(v)
	}

	donations, total, err := h.repo.List(ctx, filter)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"donations": donations,
		"total":     total,
	})
}

func (h *DonationHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid donation id")
	}

	donation, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, donation)
}

func (h *DonationHandler) Stats(c echo.Context) error {
	stats, err := h.repo.Stats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Receipt re-renders the tax receipt for download. Only completed donations
// have receipts.
func (h *DonationHandler) Receipt(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid donation id")
	}

	donation, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if donation.PaymentStatus != model.StatusCompleted {
		return echo.NewHTTPError(http.StatusConflict, "receipt available only for completed donations")
	}

	pdf, err := h.renderer.Render(donation)
	if err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="donation-receipt.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
