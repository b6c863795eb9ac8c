package repository

import (
	"context"
	"errors"
	"time"

	"donation-engine/internal/apperr"
	"donation-engine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilter narrows the admin-facing listing. Zero values mean "no filter".
type ListFilter struct {
	Status   string
	From     time.Time
	To       time.Time
	Search   string // matches donor name, email or phone
	Page     int
	PageSize int
}

type Stats struct {
	TotalDonations int64 `json:"totalDonations"`
	CompletedCount int64 `json:"completedCount"`
	PendingCount   int64 `json:"pendingCount"`
	TotalAmount    int64 `json:"totalAmount"`
}

type DonationRepository interface {
	Create(ctx context.Context, donation *model.Donation) error
	// Upsert is a single conditional write keyed on the external payment id.
	// Two concurrent calls for the same payment id converge on one row.
	Upsert(ctx context.Context, donation *model.Donation) error
	// UpdateVerified writes the verification outcome onto an existing row.
	// A unique violation on the payment id maps to ErrDuplicateExternalID.
	UpdateVerified(ctx context.Context, donation *model.Donation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Donation, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Donation, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*model.Donation, error)
	List(ctx context.Context, filter ListFilter) ([]model.Donation, int64, error)
	Stats(ctx context.Context) (*Stats, error)
}

type donationRepoImpl struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepoImpl{db: db}
}

func (r *donationRepoImpl) Create(ctx context.Context, donation *model.Donation) error {
	err := r.db.WithContext(ctx).Create(donation).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrDuplicateExternalID
	}
	return err
}

// Columns a later write for the same payment id is allowed to refresh.
// Donor-entered facts are deliberately absent: a thin reconciliation record
// never overwrites a richer form submission.
var upsertColumns = []string{
	"payment_status", "payment_method", "bank", "wallet", "card_id", "vpa",
	"notes", "updated_at",
}

func (r *donationRepoImpl) Upsert(ctx context.Context, donation *model.Donation) error {
	if donation.GatewayPaymentID == nil || *donation.GatewayPaymentID == "" {
		return r.Create(ctx, donation)
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "gateway_payment_id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(donation).Error
}

func (r *donationRepoImpl) UpdateVerified(ctx context.Context, donation *model.Donation) error {
	result := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("id = ?", donation.ID).
		Updates(map[string]interface{}{
			"gateway":            donation.Gateway,
			"gateway_order_id":   donation.GatewayOrderID,
			"gateway_payment_id": donation.GatewayPaymentID,
			"amount":             donation.Amount,
			"currency":           donation.Currency,
			"payment_status":     donation.PaymentStatus,
			"payment_method":     donation.PaymentMethod,
			"bank":               donation.Bank,
			"wallet":             donation.Wallet,
			"card_id":            donation.CardID,
			"vpa":                donation.VPA,
			"notes":              donation.Notes,
			"updated_at":         time.Now(),
		})

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return apperr.ErrDuplicateExternalID
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *donationRepoImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).First(&donation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", orderID).
		First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepoImpl) FindByPaymentID(ctx context.Context, paymentID string) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).
		Where("gateway_payment_id = ?", paymentID).
		First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepoImpl) List(ctx context.Context, filter ListFilter) ([]model.Donation, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Donation{})

	if filter.Status != "" {
		query = query.Where("payment_status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at <= ?", filter.To)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"donor_name LIKE ? OR donor_email LIKE ? OR donor_phone LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var donations []model.Donation
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&donations).Error

	return donations, total, err
}

func (r *donationRepoImpl) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats

	if err := r.db.WithContext(ctx).Model(&model.Donation{}).
		Count(&stats.TotalDonations).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("payment_status = ?", model.StatusCompleted).
		Count(&stats.CompletedCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("payment_status = ?", model.StatusPending).
		Count(&stats.PendingCount).Error; err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("payment_status = ?", model.StatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalAmount).Error

	return &stats, err
}
