package billing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finledger/finledger/internal/billing/calc"
	"github.com/finledger/finledger/internal/inventory"
	"github.com/finledger/finledger/internal/masterdata/items"
	"github.com/finledger/finledger/internal/masterdata/parties"
	"github.com/finledger/finledger/internal/shared"
	"github.com/finledger/finledger/internal/taxes"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type memoryRepo struct {
	nextID int64
	docs   map[int64]Document
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, docs: map[int64]Document{}}
}

func (m *memoryRepo) Create(_ context.Context, doc Document) (Document, error) {
	doc.ID = m.nextID
	m.nextID++
	m.docs[doc.ID] = doc
	return doc, nil
}

func (m *memoryRepo) Replace(_ context.Context, id int64, doc Document) (Document, error) {
	existing, ok := m.docs[id]
	if !ok {
		return Document{}, shared.ErrNotFound
	}
	doc.ID = id
	doc.Number = existing.Number
	doc.Type = existing.Type
	doc.Status = existing.Status
	m.docs[id] = doc
	return doc, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return Document{}, shared.ErrNotFound
	}
	return doc, nil
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Document, int, error) {
	var out []Document
	for _, doc := range m.docs {
		if doc.Type == filters.Type {
			out = append(out, doc)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepo) Transition(_ context.Context, id int64, from, to Status, number string, fn func(tx pgx.Tx, d Document) error) (Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return Document{}, shared.ErrNotFound
	}
	if doc.Status != from {
		return Document{}, shared.ErrInvalidState
	}
	if fn != nil {
		if err := fn(nil, doc); err != nil {
			return Document{}, err
		}
	}
	doc.Status = to
	if number != "" {
		doc.Number = number
	}
	m.docs[id] = doc
	return doc, nil
}

type memoryItems struct {
	items map[int64]items.Item
}

func (m *memoryItems) Get(_ context.Context, id int64) (items.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return items.Item{}, shared.ErrNotFound
	}
	return it, nil
}

type memoryTaxes struct {
	entries map[int64]taxes.Entry
}

func (m *memoryTaxes) Get(_ context.Context, id int64) (taxes.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return taxes.Entry{}, shared.ErrNotFound
	}
	return e, nil
}

type memoryParties struct {
	parties map[int64]parties.Party
}

func (m *memoryParties) Get(_ context.Context, kind parties.Kind, id int64) (parties.Party, error) {
	p, ok := m.parties[id]
	if !ok || p.Kind != kind {
		return parties.Party{}, shared.ErrNotFound
	}
	return p, nil
}

type stockLog struct {
	movements []inventory.Movement
}

func (s *stockLog) RecordInTx(_ context.Context, _ pgx.Tx, m inventory.Movement) error {
	s.movements = append(s.movements, m)
	return nil
}

type fixture struct {
	svc     *Service
	repo    *memoryRepo
	items   *memoryItems
	taxes   *memoryTaxes
	parties *memoryParties
	stock   *stockLog
}

func newFixture() *fixture {
	f := &fixture{
		repo: newMemoryRepo(),
		items: &memoryItems{items: map[int64]items.Item{
			1: {ID: 1, Name: "Steel Rod", Description: "10mm rod", UOM: "pcs", UnitPrice: d("100"), TrackStock: true},
			2: {ID: 2, Name: "Installation", UnitPrice: d("500"), TrackStock: false},
		}},
		taxes: &memoryTaxes{entries: map[int64]taxes.Entry{
			10: {ID: 10, Name: "Professional Fees [10%]", Kind: taxes.KindTDS, Rate: d("10")},
			11: {ID: 11, Name: "Sale of goods [0.1%]", Kind: taxes.KindTCS, Rate: d("0.1")},
		}},
		parties: &memoryParties{parties: map[int64]parties.Party{
			5: {ID: 5, Kind: parties.KindVendor, DisplayName: "Acme Supplies"},
			6: {ID: 6, Kind: parties.KindCustomer, DisplayName: "Globex"},
		}},
		stock: &stockLog{},
	}
	f.svc = NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), f.repo, f.items, f.taxes, f.parties, f.stock, shared.NewValidator())
	return f
}

func freeLine(qty, price string) LineForm {
	return LineForm{Name: "Consulting", Quantity: d(qty), UnitPrice: d(price)}
}

func TestCreateComputesTotalsServerSide(t *testing.T) {
	f := newFixture()

	doc, err := f.svc.Create(context.Background(), TypeInvoice, DocumentForm{
		PartyID:       6,
		Lines:         []LineForm{{Name: "Consulting", Quantity: d("2"), UnitPrice: d("100")}},
		DiscountType:  calc.DiscountPercentage,
		DiscountValue: d("10"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, doc.Status)
	require.True(t, doc.Subtotal.Equal(d("200")), "subtotal = %s", doc.Subtotal)
	require.True(t, doc.DiscountAmount.Equal(d("20")))
	require.True(t, doc.Total.Equal(d("180")), "total = %s", doc.Total)
	require.Equal(t, "Globex", doc.PartyName)
}

func TestCreateSnapshotsWithholdingRate(t *testing.T) {
	f := newFixture()

	doc, err := f.svc.Create(context.Background(), TypeBill, DocumentForm{
		PartyID:         5,
		Lines:           []LineForm{freeLine("2", "100")},
		DiscountType:    calc.DiscountPercentage,
		DiscountValue:   d("10"),
		WithholdingKind: calc.WithholdingTDS,
		TaxEntryID:      10,
	})
	require.NoError(t, err)
	require.True(t, doc.WithholdingRate.Equal(d("10")))
	require.True(t, doc.TaxAmount.Equal(d("18")), "tax = %s", doc.TaxAmount)
	require.True(t, doc.Total.Equal(d("162")), "total = %s", doc.Total)

	// A later catalog edit must not touch the stored document.
	f.taxes.entries[10] = taxes.Entry{ID: 10, Kind: taxes.KindTDS, Rate: d("25")}
	stored, err := f.svc.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	require.True(t, stored.WithholdingRate.Equal(d("10")))
}

func TestCreateRejectsTaxKindMismatch(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), TypeBill, DocumentForm{
		PartyID:         5,
		Lines:           []LineForm{freeLine("1", "100")},
		WithholdingKind: calc.WithholdingTCS,
		TaxEntryID:      10, // a TDS entry
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateAppliesItemDefaults(t *testing.T) {
	f := newFixture()

	doc, err := f.svc.Create(context.Background(), TypeBill, DocumentForm{
		PartyID: 5,
		Lines: []LineForm{
			{ItemID: 1},                   // tracked item, everything defaulted
			{ItemID: 2, Quantity: d("3")}, // untracked, quantity kept
		},
	})
	require.NoError(t, err)

	rod := doc.Lines[0]
	require.Equal(t, "Steel Rod", rod.Name)
	require.Equal(t, "10mm rod", rod.Description)
	require.Equal(t, "pcs", rod.UOM)
	require.True(t, rod.Quantity.Equal(d("1")), "zero quantity becomes one on item selection")
	require.True(t, rod.UnitPrice.Equal(d("100")))
	require.Equal(t, AccountInventoryAsset, rod.Account)

	install := doc.Lines[1]
	require.True(t, install.Quantity.Equal(d("3")), "entered quantity is never overwritten")
	require.Equal(t, AccountCostOfGoodsSold, install.Account)
	require.True(t, doc.Subtotal.Equal(d("1600")), "subtotal = %s", doc.Subtotal)
}

func TestCreateReportsAllLineViolations(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), TypeInvoice, DocumentForm{
		PartyID:       6,
		DiscountValue: d("-5"),
		Lines: []LineForm{
			{Name: "A", Quantity: d("-1"), UnitPrice: d("-2")},
		},
	})
	require.Error(t, err)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 3)
	require.Empty(t, f.repo.docs)
}

func TestCreateRejectsEmptyLines(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), TypeInvoice, DocumentForm{
		PartyID: 6,
		Lines:   []LineForm{},
	})
	require.Error(t, err)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Empty(t, f.repo.docs, "a document never has fewer than one line")
}

func TestUpdateRejectsEmptyLines(t *testing.T) {
	f := newFixture()
	doc, err := f.svc.Create(context.Background(), TypeInvoice, DocumentForm{
		PartyID: 6,
		Lines:   []LineForm{freeLine("1", "100")},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), doc.ID, DocumentForm{
		PartyID: 6,
		Lines:   []LineForm{},
	})
	require.Error(t, err)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)

	kept, err := f.svc.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, kept.Lines, 1)
}

func TestUpdateRejectsConfirmedDocument(t *testing.T) {
	f := newFixture()
	doc, err := f.svc.Create(context.Background(), TypeInvoice, DocumentForm{
		PartyID: 6,
		Lines:   []LineForm{freeLine("1", "100")},
	})
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), doc.ID)
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), doc.ID, DocumentForm{
		PartyID: 6,
		Lines:   []LineForm{freeLine("2", "100")},
	})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestConfirmAssignsNumberAndIssuesStock(t *testing.T) {
	f := newFixture()
	doc, err := f.svc.Create(context.Background(), TypeInvoice, DocumentForm{
		PartyID: 6,
		Lines:   []LineForm{{ItemID: 1, Quantity: d("4")}},
	})
	require.NoError(t, err)
	require.Empty(t, doc.Number, "drafts carry no number")

	confirmed, err := f.svc.Confirm(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, confirmed.Status)
	require.Contains(t, confirmed.Number, "INV-")

	require.Len(t, f.stock.movements, 1)
	m := f.stock.movements[0]
	require.Equal(t, int64(1), m.ItemID)
	require.True(t, m.Quantity.Equal(d("-4")), "invoices issue stock")
	require.Equal(t, inventory.ReasonIssue, m.Reason)
}

func TestConfirmBillReceivesStock(t *testing.T) {
	f := newFixture()
	doc, err := f.svc.Create(context.Background(), TypeBill, DocumentForm{
		PartyID: 5,
		Lines:   []LineForm{{ItemID: 1, Quantity: d("4")}},
	})
	require.NoError(t, err)

	confirmed, err := f.svc.Confirm(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Contains(t, confirmed.Number, "BILL-")
	require.Len(t, f.stock.movements, 1)
	require.True(t, f.stock.movements[0].Quantity.Equal(d("4")), "bills receive stock")
}

func TestConfirmRejectsIncompleteDraft(t *testing.T) {
	f := newFixture()
	// No party and the only line has zero quantity: both rules must be
	// reported together and the draft left untouched.
	doc, err := f.svc.Create(context.Background(), TypeInvoice, DocumentForm{
		Lines: []LineForm{{Name: "Pending", Quantity: d("0"), UnitPrice: d("10")}},
	})
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), doc.ID)
	require.Error(t, err)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 2)

	stored, err := f.svc.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDraft, stored.Status)
	require.Empty(t, f.stock.movements)
}

func TestConfirmTwiceFails(t *testing.T) {
	f := newFixture()
	doc, err := f.svc.Create(context.Background(), TypeInvoice, DocumentForm{
		PartyID: 6,
		Lines:   []LineForm{freeLine("1", "100")},
	})
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), doc.ID)
	require.NoError(t, err)
	_, err = f.svc.Confirm(context.Background(), doc.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestVoidReversesStock(t *testing.T) {
	f := newFixture()
	doc, err := f.svc.Create(context.Background(), TypeInvoice, DocumentForm{
		PartyID: 6,
		Lines:   []LineForm{{ItemID: 1, Quantity: d("4")}},
	})
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), doc.ID)
	require.NoError(t, err)
	voided, err := f.svc.Void(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, StatusVoid, voided.Status)

	require.Len(t, f.stock.movements, 2)
	require.True(t, f.stock.movements[0].Quantity.Add(f.stock.movements[1].Quantity).IsZero())
	require.Equal(t, inventory.ReasonReceipt, f.stock.movements[1].Reason)
}

func TestVendorCreditNumberAndStock(t *testing.T) {
	f := newFixture()
	doc, err := f.svc.Create(context.Background(), TypeVendorCredit, DocumentForm{
		PartyID: 5,
		Lines:   []LineForm{{ItemID: 1, Quantity: d("2")}},
	})
	require.NoError(t, err)

	confirmed, err := f.svc.Confirm(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Contains(t, confirmed.Number, "VC-")
	require.Len(t, f.stock.movements, 1)
	require.True(t, f.stock.movements[0].Quantity.Equal(d("-2")), "returns leave stock")
}

func TestPartyNameFallback(t *testing.T) {
	f := newFixture()

	// No catalog reference but a typed display name is accepted.
	doc, err := f.svc.Create(context.Background(), TypeInvoice, DocumentForm{
		PartyName: "Walk-in customer",
		Lines:     []LineForm{freeLine("1", "100")},
	})
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), doc.ID)
	require.NoError(t, err)
}
