package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/finledger/finledger/internal/shared"
)

type memoryRepo struct {
	nextID int64
	staff  map[int64]Staff
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, staff: map[int64]Staff{}}
}

func (m *memoryRepo) Create(_ context.Context, s Staff) (Staff, error) {
	for _, existing := range m.staff {
		if existing.Phone == s.Phone {
			return Staff{}, shared.ErrDuplicate
		}
	}
	s.ID = m.nextID
	m.nextID++
	m.staff[s.ID] = s
	return s, nil
}

func (m *memoryRepo) GetByPhone(_ context.Context, phone string) (Staff, error) {
	for _, s := range m.staff {
		if s.Phone == phone {
			return s, nil
		}
	}
	return Staff{}, shared.ErrNotFound
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (Staff, error) {
	s, ok := m.staff[id]
	if !ok {
		return Staff{}, shared.ErrNotFound
	}
	return s, nil
}

func (m *memoryRepo) List(_ context.Context) ([]Staff, error) {
	var out []Staff
	for _, s := range m.staff {
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryRepo) SetStatus(_ context.Context, id int64, status string) error {
	s, ok := m.staff[id]
	if !ok {
		return shared.ErrNotFound
	}
	s.Status = status
	m.staff[id] = s
	return nil
}

func newTestService() (*Service, *memoryRepo, *TokenIssuer) {
	repo := newMemoryRepo()
	tokens := NewTokenIssuer("test-secret", time.Hour)
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, tokens, shared.NewValidator())
	return svc, repo, tokens
}

func TestRegisterHashesPIN(t *testing.T) {
	svc, repo, _ := newTestService()

	staff, err := svc.Register(context.Background(), RegisterForm{
		Name:  "Ravi",
		Phone: "9876543210",
		PIN:   "4321",
	})
	require.NoError(t, err)
	require.Equal(t, RoleStaff, staff.Role)
	require.NotEqual(t, "4321", repo.staff[staff.ID].PINHash)
	require.NotEmpty(t, repo.staff[staff.ID].PINHash)
}

func TestRegisterValidatesPINShape(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterForm{
		Name:  "Ravi",
		Phone: "9876543210",
		PIN:   "12ab",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, _, tokens := newTestService()
	staff, err := svc.Register(context.Background(), RegisterForm{
		Name: "Ravi", Phone: "9876543210", PIN: "4321", Role: RoleAdmin,
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginForm{Phone: "9876543210", PIN: "4321"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	claims, err := tokens.Verify(result.Token)
	require.NoError(t, err)
	require.Equal(t, staff.ID, claims.StaffID)
	require.Equal(t, "Ravi", claims.Name)
	require.Equal(t, RoleAdmin, claims.Role)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, repo, _ := newTestService()
	staff, err := svc.Register(context.Background(), RegisterForm{
		Name: "Ravi", Phone: "9876543210", PIN: "4321",
	})
	require.NoError(t, err)

	// Unknown phone and wrong PIN must be indistinguishable.
	_, err = svc.Login(context.Background(), LoginForm{Phone: "0000000000", PIN: "4321"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginForm{Phone: "9876543210", PIN: "9999"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	disabled := repo.staff[staff.ID]
	disabled.Status = StatusDisabled
	repo.staff[staff.ID] = disabled
	_, err = svc.Login(context.Background(), LoginForm{Phone: "9876543210", PIN: "4321"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestDeactivateBlocksLogin(t *testing.T) {
	svc, _, _ := newTestService()
	staff, err := svc.Register(context.Background(), RegisterForm{
		Name: "Ravi", Phone: "9876543210", PIN: "4321",
	})
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(context.Background(), staff.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDisabled, deactivated.Status)

	_, err = svc.Login(context.Background(), LoginForm{Phone: "9876543210", PIN: "4321"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestDeactivateUnknownStaff(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Deactivate(context.Background(), 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListStaffIncludesDisabledAccounts(t *testing.T) {
	svc, _, _ := newTestService()
	a, err := svc.Register(context.Background(), RegisterForm{Name: "Ravi", Phone: "9876543210", PIN: "4321"})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), RegisterForm{Name: "Meera", Phone: "9876543211", PIN: "1111"})
	require.NoError(t, err)

	_, err = svc.Deactivate(context.Background(), a.ID)
	require.NoError(t, err)

	all, err := svc.ListStaff(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	repo := newMemoryRepo()
	expired := NewTokenIssuer("test-secret", -time.Minute)
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, expired, shared.NewValidator())

	_, err := svc.Register(context.Background(), RegisterForm{Name: "Ravi", Phone: "9876543210", PIN: "4321"})
	require.NoError(t, err)
	result, err := svc.Login(context.Background(), LoginForm{Phone: "9876543210", PIN: "4321"})
	require.NoError(t, err)

	_, err = expired.Verify(result.Token)
	require.Error(t, err)
}
