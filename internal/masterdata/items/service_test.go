package items

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finledger/finledger/internal/shared"
)

type memoryRepo struct {
	nextID    int64
	items     map[int64]Item
	listCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, items: map[int64]Item{}}
}

func (m *memoryRepo) List(_ context.Context, _ ListFilters) ([]Item, int, error) {
	m.listCalls++
	var out []Item
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Item, error) {
	it, ok := m.items[id]
	if !ok {
		return Item{}, shared.ErrNotFound
	}
	return it, nil
}

func (m *memoryRepo) Create(_ context.Context, item Item) (Item, error) {
	for _, existing := range m.items {
		if existing.SKU == item.SKU {
			return Item{}, shared.ErrDuplicate
		}
	}
	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, item Item) (Item, error) {
	if _, ok := m.items[id]; !ok {
		return Item{}, shared.ErrNotFound
	}
	item.ID = id
	m.items[id] = item
	return item, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := newMemoryRepo()
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, client, shared.NewValidator())
	return svc, repo, client
}

func TestCreateValidatesForm(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Create(context.Background(), ItemForm{
		Name:      "",
		SKU:       "",
		UnitPrice: decimal.NewFromInt(-5),
	})
	require.Error(t, err)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 2) // name, sku; price checked after tags pass
	require.Empty(t, repo.items)
}

func TestCreateRejectsNegativePrices(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), ItemForm{
		Name:      "Widget",
		SKU:       "WID-1",
		UnitPrice: decimal.NewFromInt(-1),
		CostPrice: decimal.NewFromInt(-2),
	})
	require.Error(t, err)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 2)
}

func TestDuplicateSKUSurfacesAsConflict(t *testing.T) {
	svc, _, _ := newTestService(t)
	form := ItemForm{Name: "Widget", SKU: "WID-1", UnitPrice: decimal.NewFromInt(10)}

	_, err := svc.Create(context.Background(), form)
	require.NoError(t, err)

	form.Name = "Widget Mk2"
	_, err = svc.Create(context.Background(), form)
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestListCachesFirstPage(t *testing.T) {
	svc, repo, _ := newTestService(t)
	_, err := svc.Create(context.Background(), ItemForm{Name: "Widget", SKU: "WID-1", UnitPrice: decimal.NewFromInt(10)})
	require.NoError(t, err)
	repo.listCalls = 0

	filters := ListFilters{Page: 1, PerPage: 25}
	_, total, err := svc.List(context.Background(), filters)
	require.NoError(t, err)
	require.Equal(t, 1, total)

	_, _, err = svc.List(context.Background(), filters)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls, "second read should hit the cache")
}

func TestWriteInvalidatesListCache(t *testing.T) {
	svc, repo, _ := newTestService(t)
	filters := ListFilters{Page: 1, PerPage: 25}

	_, _, err := svc.List(context.Background(), filters)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), ItemForm{Name: "Widget", SKU: "WID-1", UnitPrice: decimal.NewFromInt(10)})
	require.NoError(t, err)

	out, total, err := svc.List(context.Background(), filters)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, out, 1)
	require.Equal(t, 2, repo.listCalls)
}

func TestSearchBypassesCache(t *testing.T) {
	svc, repo, _ := newTestService(t)

	for i := 0; i < 2; i++ {
		_, _, err := svc.List(context.Background(), ListFilters{Search: "wid", Page: 1, PerPage: 25})
		require.NoError(t, err)
	}
	require.Equal(t, 2, repo.listCalls)
}
