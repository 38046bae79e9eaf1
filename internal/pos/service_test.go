package pos

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finledger/finledger/internal/billing"
	"github.com/finledger/finledger/internal/shared"
)

type fakeDocuments struct {
	nextID    int64
	created   map[int64]billing.Document
	confirmed map[int64]bool
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{nextID: 1, created: map[int64]billing.Document{}, confirmed: map[int64]bool{}}
}

func (f *fakeDocuments) Create(_ context.Context, t billing.DocType, form billing.DocumentForm) (billing.Document, error) {
	total := decimal.Zero
	for _, l := range form.Lines {
		total = total.Add(l.Quantity.Mul(l.UnitPrice).Sub(l.Discount))
	}
	doc := billing.Document{
		ID:        f.nextID,
		Type:      t,
		Status:    billing.StatusDraft,
		PartyID:   form.PartyID,
		PartyName: form.PartyName,
		Total:     total,
	}
	f.nextID++
	f.created[doc.ID] = doc
	return doc, nil
}

func (f *fakeDocuments) Confirm(_ context.Context, id int64) (billing.Document, error) {
	doc, ok := f.created[id]
	if !ok {
		return billing.Document{}, shared.ErrNotFound
	}
	doc.Status = billing.StatusConfirmed
	doc.Number = "INV-TEST"
	f.created[id] = doc
	f.confirmed[id] = true
	return doc, nil
}

func newTestService() (*Service, *fakeDocuments) {
	docs := newFakeDocuments()
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), docs, shared.NewValidator()), docs
}

func saleLines() []billing.LineForm {
	return []billing.LineForm{{Name: "Soap", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(40)}}
}

func TestCheckoutConfirmsAndReturnsChange(t *testing.T) {
	svc, docs := newTestService()

	sale, err := svc.Checkout(context.Background(), SaleForm{
		Lines:    saleLines(),
		Tendered: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	require.Equal(t, billing.StatusConfirmed, sale.Invoice.Status)
	require.True(t, sale.ChangeDue.Equal(decimal.NewFromInt(80)), "change = %s", sale.ChangeDue)
	require.Equal(t, "cash", sale.PaymentMode)
	require.Equal(t, "Walk-in Customer", sale.Invoice.PartyName)
	require.True(t, docs.confirmed[sale.Invoice.ID])
}

func TestCheckoutRejectsShortPayment(t *testing.T) {
	svc, docs := newTestService()

	_, err := svc.Checkout(context.Background(), SaleForm{
		Lines:    saleLines(),
		Tendered: decimal.NewFromInt(100),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, docs.confirmed, "short payment must not confirm the invoice")
}

func TestCheckoutRequiresLines(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Checkout(context.Background(), SaleForm{Tendered: decimal.NewFromInt(10)})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCheckoutKeepsNamedCustomer(t *testing.T) {
	svc, _ := newTestService()

	sale, err := svc.Checkout(context.Background(), SaleForm{
		CustomerName: "Priya",
		Lines:        saleLines(),
		Tendered:     decimal.NewFromInt(120),
		PaymentMode:  "upi",
	})
	require.NoError(t, err)
	require.Equal(t, "Priya", sale.Invoice.PartyName)
	require.Equal(t, "upi", sale.PaymentMode)
}
