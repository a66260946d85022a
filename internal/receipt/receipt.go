// Package receipt renders a printable PDF ticket for a completed sale.
package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/bakeflow/pos-checkout/internal/checkout"
	"github.com/bakeflow/pos-checkout/internal/sales"
)

// ticket dimensions in mm, sized for 80mm thermal roll paper
const (
	ticketWidth  = 80.0
	ticketMargin = 5.0
	lineHeight   = 5.0
)

// Renderer produces receipt PDFs. ShopName appears in the ticket header.
type Renderer struct {
	ShopName string

	nowFunc func() time.Time
}

func NewRenderer(shopName string) *Renderer {
	return &Renderer{ShopName: shopName, nowFunc: time.Now}
}

// Render lays out the ticket for one sale and returns the PDF bytes.
func (r *Renderer) Render(sale sales.Sale) ([]byte, error) {
	height := 60.0 + float64(len(sale.Lines))*lineHeight
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: ticketWidth, Ht: height},
	})
	pdf.SetMargins(ticketMargin, ticketMargin, ticketMargin)
	pdf.SetAutoPageBreak(true, ticketMargin)
	pdf.AddPage()

	usable := ticketWidth - 2*ticketMargin

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(usable, lineHeight+1, r.ShopName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	when := sale.CreatedAt
	if when.IsZero() {
		when = r.nowFunc()
	}
	pdf.CellFormat(usable, lineHeight-1, when.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.CellFormat(usable, lineHeight-1, fmt.Sprintf("Served by %s", sale.CashierName), "", 1, "C", false, 0, "")
	pdf.CellFormat(usable, lineHeight-1, fmt.Sprintf("Sale %s", sale.SaleID), "", 1, "C", false, 0, "")
	r.divider(pdf, usable)

	pdf.SetFont("Helvetica", "", 9)
	for _, ln := range sale.Lines {
		label := fmt.Sprintf("%dx %s", ln.Quantity, ln.Name)
		amount := money(int64(ln.Quantity) * ln.UnitPriceCents)
		pdf.CellFormat(usable*0.7, lineHeight, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(usable*0.3, lineHeight, amount, "", 1, "R", false, 0, "")
	}
	r.divider(pdf, usable)

	r.totalRow(pdf, usable, "Subtotal", sale.SubtotalCents, false)
	if sale.DiscountCents > 0 {
		r.totalRow(pdf, usable, "Discount", -sale.DiscountCents, false)
	}
	r.totalRow(pdf, usable, "Total", sale.TotalCents, true)
	r.divider(pdf, usable)

	paid := sale.CashCents + sale.CardCents
	r.totalRow(pdf, usable, "Paid", paid, false)
	if sale.Method == "split" {
		r.totalRow(pdf, usable, "  cash", sale.CashCents, false)
		r.totalRow(pdf, usable, "  card", sale.CardCents, false)
	}
	if sale.Method == "credit" {
		r.totalRow(pdf, usable, "On account", sale.RemainingCents, false)
	} else {
		r.totalRow(pdf, usable, "Change", sale.ChangeCents, false)
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(usable, lineHeight-1, "Thank you for your visit", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt for sale %s: %w", sale.SaleID, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) totalRow(pdf *gofpdf.Fpdf, usable float64, label string, cents int64, bold bool) {
	if bold {
		pdf.SetFont("Helvetica", "B", 10)
	} else {
		pdf.SetFont("Helvetica", "", 9)
	}
	pdf.CellFormat(usable*0.6, lineHeight, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(usable*0.4, lineHeight, money(cents), "", 1, "R", false, 0, "")
}

func (r *Renderer) divider(pdf *gofpdf.Fpdf, usable float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(usable, 3, "--------------------------------", "", 1, "C", false, 0, "")
}

func money(cents int64) string {
	return fmt.Sprintf("%.2f", checkout.CentsToAmount(cents))
}
