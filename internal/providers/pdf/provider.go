package pdf

import (
	"context"
	"io"
)

// ReceiptData carries the pre-formatted fields printed on an order receipt.
// Amounts arrive already rendered as display strings so the generator stays
// free of currency logic.
type ReceiptData struct {
	StoreName    string
	StoreAddress string
	StoreEmail   string

	OrderNumber string
	DatePaid    string

	BillToName    string
	BillToAddress string
	BillToEmail   string

	ShipToName    string
	ShipToAddress string

	Items []ReceiptItem

	Subtotal string
	Shipping string
	Total    string
}

type ReceiptItem struct {
	Description string
	Qty         int
	UnitPrice   string
	Amount      string
}

type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	return nil, nil
}
