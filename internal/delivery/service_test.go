package delivery

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finledger/finledger/internal/inventory"
	"github.com/finledger/finledger/internal/shared"
)

type memoryRepo struct {
	nextID   int64
	challans map[int64]Challan
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, challans: map[int64]Challan{}}
}

func (m *memoryRepo) Create(_ context.Context, c Challan) (Challan, error) {
	c.ID = m.nextID
	m.nextID++
	m.challans[c.ID] = c
	return c, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Challan, error) {
	c, ok := m.challans[id]
	if !ok {
		return Challan{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) List(_ context.Context, _ ListFilters) ([]Challan, int, error) {
	var out []Challan
	for _, c := range m.challans {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memoryRepo) SetStatus(_ context.Context, id int64, from, to ChallanStatus, deliveredAt *time.Time, fn func(tx pgx.Tx, c Challan) error) (Challan, error) {
	c, ok := m.challans[id]
	if !ok {
		return Challan{}, shared.ErrNotFound
	}
	if c.Status != from {
		return Challan{}, shared.ErrInvalidState
	}
	if fn != nil {
		if err := fn(nil, c); err != nil {
			return Challan{}, err
		}
	}
	c.Status = to
	c.DeliveredAt = deliveredAt
	m.challans[id] = c
	return c, nil
}

type stockLog struct {
	movements []inventory.Movement
}

func (s *stockLog) RecordInTx(_ context.Context, _ pgx.Tx, m inventory.Movement) error {
	s.movements = append(s.movements, m)
	return nil
}

func newTestService() (*Service, *memoryRepo, *stockLog) {
	repo := newMemoryRepo()
	stock := &stockLog{}
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, stock, shared.NewValidator()), repo, stock
}

func validForm() ChallanForm {
	return ChallanForm{
		CustomerName: "Globex",
		Lines: []ChallanLineForm{
			{Name: "Steel Rod", Quantity: decimal.NewFromInt(5), UOM: "pcs"},
		},
	}
}

func TestCreateAssignsNumberAndOpens(t *testing.T) {
	svc, _, _ := newTestService()

	c, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)
	require.Equal(t, StatusOpen, c.Status)
	require.Contains(t, c.Number, "CH-")
	require.False(t, c.DeliveryDate.IsZero())
}

func TestCreateRequiresCustomerAndPositiveQuantity(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Create(context.Background(), ChallanForm{
		Lines: []ChallanLineForm{{Name: "Steel Rod", Quantity: decimal.Zero}},
	})
	require.Error(t, err)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 2)
	require.Empty(t, repo.challans)
}

func TestDeliverThenCancelFails(t *testing.T) {
	svc, _, _ := newTestService()
	c, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)

	delivered, err := svc.MarkDelivered(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredAt)

	_, err = svc.Cancel(context.Background(), c.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestCancelOpenChallan(t *testing.T) {
	svc, _, stock := newTestService()
	c, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.Nil(t, cancelled.DeliveredAt)
	require.Empty(t, stock.movements)
}

func TestMarkDeliveredIssuesStock(t *testing.T) {
	svc, _, stock := newTestService()
	c, err := svc.Create(context.Background(), ChallanForm{
		CustomerName: "Globex",
		Lines: []ChallanLineForm{
			{ItemID: 7, Name: "Steel Rod", Quantity: decimal.NewFromInt(5), UOM: "pcs"},
			{Name: "Loose packing", Quantity: decimal.NewFromInt(2), UOM: "pcs"},
		},
	})
	require.NoError(t, err)

	_, err = svc.MarkDelivered(context.Background(), c.ID)
	require.NoError(t, err)

	require.Len(t, stock.movements, 1)
	m := stock.movements[0]
	require.Equal(t, int64(7), m.ItemID)
	require.True(t, m.Quantity.Equal(decimal.NewFromInt(-5)))
	require.Equal(t, inventory.ReasonIssue, m.Reason)
	require.Equal(t, c.Number, m.Reference)
}

func TestMarkDeliveredSkipsInvoiceLinkedChallan(t *testing.T) {
	svc, _, stock := newTestService()
	c, err := svc.Create(context.Background(), ChallanForm{
		CustomerName: "Globex",
		InvoiceID:    42,
		Lines: []ChallanLineForm{
			{ItemID: 7, Name: "Steel Rod", Quantity: decimal.NewFromInt(5), UOM: "pcs"},
		},
	})
	require.NoError(t, err)

	delivered, err := svc.MarkDelivered(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, delivered.Status)
	require.Empty(t, stock.movements)
}
