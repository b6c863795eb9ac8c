package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"donation-engine/internal/apperr"
	"donation-engine/internal/gateway"
	"donation-engine/internal/model"
	"donation-engine/internal/repository"
)

const reconcilePageSize = 100

type SyncReport struct {
	SyncedCount  int `json:"syncedCount"`
	SkippedCount int `json:"skippedCount"`
	TotalFound   int `json:"totalFound"`
}

// ReconciliationService walks a gateway's own payment ledger and backfills
// donations the store never saw (lost webhooks, interrupted verifications).
// Safe to re-run over overlapping windows: existing records are skipped.
type ReconciliationService struct {
	gateways *gateway.Registry
	repo     repository.DonationRepository
}

func NewReconciliationService(gateways *gateway.Registry, repo repository.DonationRepository) *ReconciliationService {
	return &ReconciliationService{gateways: gateways, repo: repo}
}

func (s *ReconciliationService) Sync(ctx context.Context, provider string, from, to time.Time) (*SyncReport, error) {
	gw, err := s.gateways.Get(provider)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{}
	skip := 0
	for {
		records, err := gw.ListPayments(ctx, from, to, reconcilePageSize, skip)
		if err != nil {
			return nil, fmt.Errorf("list %s payments: %w", provider, err)
		}
		if len(records) == 0 {
			break
		}

		for i := range records {
			report.TotalFound++
			if err := s.backfill(ctx, gw.Name(), &records[i], report); err != nil {
				return nil, err
			}
		}

		if len(records) < reconcilePageSize {
			break
		}
		skip += reconcilePageSize
	}

	log.Printf("reconciliation %s: %d found, %d synced, %d skipped",
		provider, report.TotalFound, report.SyncedCount, report.SkippedCount)
	return report, nil
}

func (s *ReconciliationService) backfill(ctx context.Context, gatewayName string, record *gateway.PaymentRecord, report *SyncReport) error {
	_, err := s.repo.FindByPaymentID(ctx, record.PaymentID)
	if err == nil {
		// Already recorded, usually with richer donor-entered data. Never
		// overwrite it with the thinner provider-derived view.
		report.SkippedCount++
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	donation := donationFromRecord(gatewayName, record)
	if err := s.repo.Upsert(ctx, donation); err != nil {
		// A concurrent writer beat us to this payment id. Same outcome.
		if errors.Is(err, apperr.ErrDuplicateExternalID) {
			report.SkippedCount++
			return nil
		}
		return fmt.Errorf("backfill payment %s: %w", record.PaymentID, err)
	}

	report.SyncedCount++
	return nil
}

// donationFromRecord builds a resolved donation from the provider's view
// alone, with the donor-name fallback chain email, phone, then anonymous.
func donationFromRecord(gatewayName string, record *gateway.PaymentRecord) *model.Donation {
	name := record.Email
	if name == "" {
		name = record.Contact
	}
	if name == "" {
		name = "Anonymous"
	}

	paymentID := record.PaymentID
	donation := &model.Donation{
		Gateway:          gatewayName,
		GatewayPaymentID: &paymentID,
		Amount:           record.Amount,
		Currency:         record.Currency,
		SevaName:         record.Description,
		DonorName:        name,
		DonorEmail:       record.Email,
		DonorPhone:       record.Contact,
		PaymentStatus:    record.Status,
		PaymentMethod:    record.Method,
		Bank:             record.Bank,
		Wallet:           record.Wallet,
		CardID:           record.CardID,
		VPA:              record.VPA,
		Notes:            "backfilled from gateway; provider status: " + record.RawStatus,
	}
	if record.OrderID != "" {
		orderID := record.OrderID
		donation.GatewayOrderID = &orderID
	}
	return donation
}
