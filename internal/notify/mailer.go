// Package notify sends the rendered receipt to the donor. Failures stay
// inside the DeliveryResult: nothing here may disturb the payment write path.
package notify

import (
	"fmt"
	"io"
	"time"

	"donation-engine/internal/apperr"
	"donation-engine/internal/config"
	"donation-engine/internal/model"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

type DeliveryResult struct {
	Delivered bool
	Reference string
	Err       error
}

type Sender interface {
	Send(donation *model.Donation, pdf []byte) DeliveryResult
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.SMTP) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *Mailer) Send(donation *model.Donation, pdf []byte) DeliveryResult {
	if donation.DonorEmail == "" {
		return DeliveryResult{
			Err: &apperr.NotificationDeliveryError{Err: fmt.Errorf("donor has no email address")},
		}
	}

	reference := uuid.New().String()

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", donation.DonorEmail)
	msg.SetHeader("Subject", "Thank you for your donation")
	msg.SetHeader("Message-ID", fmt.Sprintf("<%s@donation-engine>", reference))
	msg.SetBody("text/plain", body(donation))
	msg.Attach("donation-receipt.pdf", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(pdf)
		return err
	}))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return DeliveryResult{
			Reference: reference,
			Err:       &apperr.NotificationDeliveryError{Recipient: donation.DonorEmail, Err: err},
		}
	}

	return DeliveryResult{Delivered: true, Reference: reference}
}

func body(d *model.Donation) string {
	purpose := d.SevaName
	if purpose == "" {
		purpose = "our mission"
	}
	return fmt.Sprintf(
		"Dear %s,\n\n"+
			"We gratefully acknowledge your donation of %s %d towards %s, received on %s.\n"+
			"Your tax receipt is attached to this email.\n\n"+
			"With gratitude,\nDonations Team",
		d.DonorDisplayName(), d.Currency, d.Amount, purpose,
		d.CreatedAt.Format(time.RFC1123),
	)
}
