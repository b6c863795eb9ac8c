package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment lifecycle states. A donation starts pending; refunded is only ever
// applied from a provider-reported state or a manual update, never by the
// verification flow.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

const (
	DonorTypeIndian  = "Indian Citizen"
	DonorTypeForeign = "Foreign Citizen"
)

// Gateway keys. Selected by configuration, never hardcoded in the flows.
const (
	GatewayRazorpay = "razorpay"
	GatewayPayU     = "payu"
)

type Donation struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Gateway          string  `gorm:"size:32" json:"gateway"`
	GatewayOrderID   *string `gorm:"index" json:"gatewayOrderId,omitempty"`
	GatewayPaymentID *string `gorm:"uniqueIndex" json:"gatewayPaymentId,omitempty"`

	Amount      int    `gorm:"not null" json:"amount"`
	Currency    string `gorm:"size:8;default:'INR'" json:"currency"`
	SevaName    string `gorm:"size:255" json:"sevaName"`
	Description string `json:"description,omitempty"`

	DonorName   string `gorm:"size:255" json:"donorName"`
	DonorEmail  string `gorm:"size:255;index" json:"donorEmail,omitempty"`
	DonorPhone  string `gorm:"size:32" json:"donorPhone,omitempty"`
	DonorType   string `gorm:"size:32" json:"donorType,omitempty"`
	IsAnonymous bool   `json:"isAnonymous"`

	PaymentStatus string `gorm:"size:16;not null;default:'pending';index" json:"paymentStatus"`
	PaymentMethod string `gorm:"size:32" json:"paymentMethod,omitempty"`

	// Provider-dependent metadata, populated from the gateway's own record.
	Bank   string `gorm:"size:64" json:"bank,omitempty"`
	Wallet string `gorm:"size:64" json:"wallet,omitempty"`
	CardID string `gorm:"size:64" json:"cardId,omitempty"`
	VPA    string `gorm:"size:128" json:"vpa,omitempty"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *Donation) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}

// DonorDisplayName is what appears on receipts and the donor wall.
func (d *Donation) DonorDisplayName() string {
	if d.IsAnonymous || d.DonorName == "" {
		return "Anonymous Donor"
	}
	return d.DonorName
}
