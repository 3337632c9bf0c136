package services

import (
	"fmt"
	"strings"
	"time"

	"cafe-pos/models"

	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Receipt is the printable record of one placed order.
type Receipt struct {
	OrderID      string
	CustomerName string
	TableID      string
	TableLabel   string
	IssuedAt     time.Time
	Lines        []ReceiptLine
	Total        decimal.Decimal
}

// BuildReceipt formats an order and the cart lines it was built from.
// Lines with no units are skipped, so Total matches Cart.Total at submission.
func BuildReceipt(order models.PlacedOrder, lines []CartLine) Receipt {
	r := Receipt{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		TableID:      order.TableID,
		TableLabel:   order.TableNumber,
		IssuedAt:     order.OrderDate,
		Total:        decimal.Zero,
	}
	if r.TableLabel == "" {
		r.TableLabel = order.TableID
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		sub := l.Subtotal()
		r.Lines = append(r.Lines, ReceiptLine{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
			LineTotal: sub,
		})
		r.Total = r.Total.Add(sub)
	}
	return r
}

func FormatPrice(d decimal.Decimal) string {
	return "Rp. " + d.StringFixed(0)
}

func (r Receipt) Text() string {
	var b strings.Builder
	b.WriteString("🧾 Receipt\n")
	if r.OrderID != "" {
		fmt.Fprintf(&b, "Order: #%s\n", r.OrderID)
	}
	if !r.IssuedAt.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", r.IssuedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "Customer: %s\n", r.CustomerName)
	fmt.Fprintf(&b, "Table: %s\n\n", r.TableLabel)
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "%s x%d @ %s = %s\n", l.Name, l.Quantity, FormatPrice(l.UnitPrice), FormatPrice(l.LineTotal))
	}
	fmt.Fprintf(&b, "\nTotal: %s", FormatPrice(r.Total))
	return b.String()
}

// QRCode renders a PNG QR code carrying the order reference.
func (r Receipt) QRCode(size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(r.reference(), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt qr: %w", err)
	}
	return png, nil
}

func (r Receipt) reference() string {
	return fmt.Sprintf("order:%s;table:%s;total:%s", r.OrderID, r.TableID, r.Total.String())
}
