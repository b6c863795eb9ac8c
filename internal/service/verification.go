package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"donation-engine/internal/apperr"
	"donation-engine/internal/gateway"
	"donation-engine/internal/model"
	"donation-engine/internal/notify"
	"donation-engine/internal/repository"

	"github.com/google/uuid"
)

// Renderer builds the receipt document. Satisfied by receipt.Builder.
type Renderer interface {
	Number(donation *model.Donation) string
	Render(donation *model.Donation) ([]byte, error)
}

type DonorInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Type        string `json:"type"`
	SevaName    string `json:"sevaName"`
	Description string `json:"description"`
	IsAnonymous bool   `json:"isAnonymous"`
}

type CreateOrderRequest struct {
	Amount   int               `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
	Donor    *DonorInput       `json:"donor"`
}

type CreateOrderResult struct {
	OrderID    string     `json:"orderId"`
	Amount     int        `json:"amount"`
	Currency   string     `json:"currency"`
	Receipt    string     `json:"receipt"`
	DonationID *uuid.UUID `json:"donationId,omitempty"`
}

type VerifyRequest struct {
	OrderID    string      `json:"orderId"`
	PaymentID  string      `json:"paymentId"`
	Signature  string      `json:"signature"`
	DonationID *uuid.UUID  `json:"donationId"`
	Donor      *DonorInput `json:"donor"`
}

// VerifyResult reports the financial outcome plus the soft notification
// outcome. EmailError never implies the donation was not recorded.
type VerifyResult struct {
	Donation      *model.Donation `json:"donation"`
	ReceiptNumber string          `json:"receiptNumber,omitempty"`
	EmailSent     bool            `json:"emailSent"`
	EmailError    string          `json:"emailError,omitempty"`
}

type VerificationService struct {
	gateways *gateway.Registry
	repo     repository.DonationRepository
	renderer Renderer
	mailer   notify.Sender
}

func NewVerificationService(
	gateways *gateway.Registry,
	repo repository.DonationRepository,
	renderer Renderer,
	mailer notify.Sender,
) *VerificationService {
	return &VerificationService{
		gateways: gateways,
		repo:     repo,
		renderer: renderer,
		mailer:   mailer,
	}
}

// CreateOrder reserves the amount with the default gateway and, when donor
// form data is supplied, seeds a pending donation carrying it. Validation
// happens before any gateway call.
func (s *VerificationService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if req.Amount <= 0 {
		return nil, apperr.Validation("amount", "must be a positive amount")
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}
	if req.Receipt == "" {
		req.Receipt = fmt.Sprintf("donation-%d", time.Now().Unix())
	}
	if req.Notes == nil {
		req.Notes = map[string]string{}
	}
	if req.Donor != nil {
		req.Notes["donor_name"] = req.Donor.Name
		req.Notes["seva_name"] = req.Donor.SevaName
	}

	gw := s.gateways.Default()
	order, err := gw.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, err
	}

	result := &CreateOrderResult{
		OrderID:  order.OrderID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
	}

	if req.Donor != nil {
		donation := &model.Donation{
			Gateway:        gw.Name(),
			GatewayOrderID: &order.OrderID,
			Amount:         req.Amount,
			Currency:       req.Currency,
			SevaName:       req.Donor.SevaName,
			Description:    req.Donor.Description,
			DonorName:      req.Donor.Name,
			DonorEmail:     req.Donor.Email,
			DonorPhone:     req.Donor.Phone,
			DonorType:      req.Donor.Type,
			IsAnonymous:    req.Donor.IsAnonymous,
			PaymentStatus:  model.StatusPending,
		}
		if err := s.repo.Create(ctx, donation); err != nil {
			return nil, fmt.Errorf("seed pending donation: %w", err)
		}
		result.DonationID = &donation.ID
	}

	return result, nil
}

// VerifyPayment runs the strict sequence: signature check, authoritative
// fetch, atomic record, then best-effort notification. Everything after the
// record step is soft-failure only.
func (s *VerificationService) VerifyPayment(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return nil, apperr.Validation("", "orderId, paymentId and signature are required")
	}

	gw := s.gateways.Default()

	if !gw.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		return nil, apperr.ErrSignatureMismatch
	}

	// Financial facts come from the provider's system of record, never from
	// the client-supplied triple.
	record, err := gw.FetchPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}

	donation, existing, err := s.resolveDonation(ctx, req)
	if err != nil {
		return nil, err
	}

	applyPaymentRecord(donation, gw.Name(), req.OrderID, record)

	if existing {
		err = s.repo.UpdateVerified(ctx, donation)
	} else {
		err = s.repo.Upsert(ctx, donation)
	}
	if errors.Is(err, apperr.ErrDuplicateExternalID) {
		// Another writer already recorded this payment. Treat as applied.
		recorded, findErr := s.repo.FindByPaymentID(ctx, req.PaymentID)
		if findErr != nil {
			return nil, err
		}
		donation = recorded
	} else if err != nil {
		return nil, fmt.Errorf("record donation: %w", err)
	}

	result := &VerifyResult{Donation: donation}
	s.notify(donation, result)
	return result, nil
}

// HandleProviderCallback is the form-POST confirmation path. There is no
// signature; the posted status fields are validated and the amount must match
// the stored donation before it is marked completed.
func (s *VerificationService) HandleProviderCallback(ctx context.Context, provider string, form url.Values) (*VerifyResult, error) {
	adapter, err := s.gateways.Get(provider)
	if err != nil {
		return nil, err
	}
	validator, ok := adapter.(gateway.CallbackValidator)
	if !ok {
		return nil, apperr.ErrGatewayUnsupported
	}

	callback, err := validator.ValidateCallback(form)
	if err != nil {
		return nil, err
	}

	donation, err := s.repo.FindByOrderID(ctx, callback.TxnID)
	if err != nil {
		return nil, err
	}

	if callback.Status == model.StatusCompleted && callback.Amount != donation.Amount {
		return nil, apperr.Validation("amount",
			fmt.Sprintf("posted amount %d does not match donation amount %d", callback.Amount, donation.Amount))
	}

	donation.Gateway = adapter.Name()
	if callback.PaymentID != "" {
		donation.GatewayPaymentID = &callback.PaymentID
	}
	donation.PaymentStatus = callback.Status
	donation.PaymentMethod = callback.Method
	donation.Notes = appendNote(donation.Notes, "provider status: "+callback.RawStatus)

	if err := s.repo.UpdateVerified(ctx, donation); err != nil {
		if errors.Is(err, apperr.ErrDuplicateExternalID) {
			recorded, findErr := s.repo.FindByPaymentID(ctx, callback.PaymentID)
			if findErr == nil {
				result := &VerifyResult{Donation: recorded}
				return result, nil
			}
		}
		return nil, fmt.Errorf("record donation: %w", err)
	}

	result := &VerifyResult{Donation: donation}
	s.notify(donation, result)
	return result, nil
}

// resolveDonation locates the donation a verification refers to, or builds a
// fresh one when the payment arrived without a prior form submission.
func (s *VerificationService) resolveDonation(ctx context.Context, req VerifyRequest) (*model.Donation, bool, error) {
	if req.DonationID != nil && *req.DonationID != uuid.Nil {
		donation, err := s.repo.FindByID(ctx, *req.DonationID)
		if err != nil {
			return nil, false, err
		}
		return donation, true, nil
	}

	donation, err := s.repo.FindByOrderID(ctx, req.OrderID)
	if err == nil {
		return donation, true, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}

	donation = &model.Donation{PaymentStatus: model.StatusPending}
	if req.Donor != nil {
		donation.DonorName = req.Donor.Name
		donation.DonorEmail = req.Donor.Email
		donation.DonorPhone = req.Donor.Phone
		donation.DonorType = req.Donor.Type
		donation.SevaName = req.Donor.SevaName
		donation.Description = req.Donor.Description
		donation.IsAnonymous = req.Donor.IsAnonymous
	}
	return donation, false, nil
}

// notify renders and emails the receipt for completed donations. All failures
// land in the result payload; the recorded donation is already final.
func (s *VerificationService) notify(donation *model.Donation, result *VerifyResult) {
	if donation.PaymentStatus != model.StatusCompleted {
		return
	}
	result.ReceiptNumber = s.renderer.Number(donation)
	if donation.DonorEmail == "" {
		return
	}

	pdf, err := s.renderer.Render(donation)
	if err != nil {
		log.Printf("receipt render for donation %s: %v", donation.ID, err)
		result.EmailError = err.Error()
		return
	}

	delivery := s.mailer.Send(donation, pdf)
	result.EmailSent = delivery.Delivered
	if delivery.Err != nil {
		log.Printf("receipt delivery for donation %s: %v", donation.ID, delivery.Err)
		result.EmailError = delivery.Err.Error()
	}
}

func applyPaymentRecord(d *model.Donation, gatewayName, orderID string, record *gateway.PaymentRecord) {
	d.Gateway = gatewayName
	d.GatewayOrderID = &orderID
	d.GatewayPaymentID = &record.PaymentID
	d.PaymentStatus = record.Status
	d.PaymentMethod = record.Method
	d.Bank = record.Bank
	d.Wallet = record.Wallet
	d.CardID = record.CardID
	d.VPA = record.VPA
	if record.Amount > 0 {
		d.Amount = record.Amount
	}
	if record.Currency != "" {
		d.Currency = record.Currency
	}
	if d.DonorEmail == "" {
		d.DonorEmail = record.Email
	}
	if d.DonorPhone == "" {
		d.DonorPhone = record.Contact
	}
	if d.DonorName == "" {
		d.DonorName = record.Email
	}
	d.Notes = appendNote(d.Notes, "provider status: "+record.RawStatus)
}

func appendNote(notes, line string) string {
	if notes == "" {
		return line
	}
	return notes + "; " + line
}
