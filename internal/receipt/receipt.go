// Package receipt renders the donor-facing tax receipt as a PDF. Rendering is
// a pure function of the donation snapshot: the same donation always produces
// the same document.
package receipt

import (
	"bytes"
	"fmt"
	"strings"

	"donation-engine/internal/apperr"
	"donation-engine/internal/config"
	"donation-engine/internal/model"

	"github.com/jung-kurt/gofpdf"
)

type Builder struct {
	cfg *config.Receipt
}

func NewBuilder(cfg *config.Receipt) *Builder {
	return &Builder{cfg: cfg}
}

// Number derives the receipt number from the donation's creation timestamp,
// shaped PREFIX/YEAR/HHMM.
func (b *Builder) Number(d *model.Donation) string {
	return fmt.Sprintf("%s/%d/%02d%02d",
		b.cfg.NumberPrefix, d.CreatedAt.Year(), d.CreatedAt.Hour(), d.CreatedAt.Minute())
}

func (b *Builder) Render(d *model.Donation) ([]byte, error) {
	if d.Amount <= 0 {
		return nil, &apperr.ReceiptRenderError{Reason: "donation amount must be positive"}
	}
	if d.CreatedAt.IsZero() {
		return nil, &apperr.ReceiptRenderError{Reason: "donation has no creation timestamp"}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Pin the embedded metadata so output bytes stay deterministic.
	pdf.SetCreationDate(d.CreatedAt)
	pdf.SetModificationDate(d.CreatedAt)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, b.cfg.OrgName, "", 1, "C", false, 0, "")

	if b.cfg.OrgAddress != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, b.cfg.OrgAddress, "", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "DONATION RECEIPT", "B", 1, "C", false, 0, "")
	pdf.Ln(6)

	reference := ""
	if d.GatewayPaymentID != nil {
		reference = *d.GatewayPaymentID
	}
	purpose := d.SevaName
	if purpose == "" {
		purpose = "General Donation"
	}

	rows := [][2]string{
		{"Receipt No.", b.Number(d)},
		{"Date", d.CreatedAt.Format("02 Jan 2006")},
		{"Received From", d.DonorDisplayName()},
		{"Amount", fmt.Sprintf("%s %d", d.Currency, d.Amount)},
		{"Amount in Words", AmountInWords(d.Amount) + " " + currencyNoun(d.Currency) + " Only"},
		{"Payment Method", methodLabel(d.PaymentMethod)},
		{"Transaction Ref.", reference},
		{"Towards", purpose},
	}

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	if b.cfg.Reg80G != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5,
			fmt.Sprintf("Donations are eligible for deduction under Section 80G of the Income Tax Act, 1961. Registration: %s", b.cfg.Reg80G),
			"", "L", false)
	}
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "This is a computer generated receipt and does not require a signature.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &apperr.ReceiptRenderError{Reason: err.Error()}
	}
	return buf.Bytes(), nil
}

func currencyNoun(currency string) string {
	switch strings.ToUpper(currency) {
	case "INR", "":
		return "Rupees"
	case "USD":
		return "Dollars"
	default:
		return strings.ToUpper(currency)
	}
}

func methodLabel(method string) string {
	switch method {
	case "":
		return "Online"
	case "upi":
		return "UPI"
	case "netbanking":
		return "Net Banking"
	case "card":
		return "Card"
	case "wallet":
		return "Wallet"
	default:
		return strings.ToUpper(method[:1]) + method[1:]
	}
}
