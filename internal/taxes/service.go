package taxes

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, kind Kind, status string) ([]Entry, error) {
	return s.repo.List(ctx, kind, status)
}

func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	if id <= 0 {
		return Entry{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Archive retires an entry from the pickers without deleting it. Documents
// that copied its rate keep the snapshot they took at selection time.
func (s *Service) Archive(ctx context.Context, id int64) (Entry, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	e.Status = StatusInactive
	if err := s.repo.Update(ctx, id, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// CreateInput is a plain catalog entry, never a group.
type CreateInput struct {
	Name    string          `json:"name" validate:"required"`
	Kind    Kind            `json:"kind" validate:"required,oneof=tds tcs"`
	Rate    decimal.Decimal `json:"rate"`
	Section string          `json:"section"`
}

// Create adds a new active catalog entry and returns it so the caller can
// apply it to the open document in the same round trip.
func (s *Service) Create(ctx context.Context, in CreateInput) (Entry, error) {
	var violations []string
	if strings.TrimSpace(in.Name) == "" {
		violations = append(violations, "name is required")
	}
	if in.Kind != KindTDS && in.Kind != KindTCS {
		violations = append(violations, "kind must be tds or tcs")
	}
	if in.Rate.IsNegative() || in.Rate.GreaterThan(decimal.NewFromInt(100)) {
		violations = append(violations, "rate must be between 0 and 100")
	}
	if err := shared.NewValidationError(violations); err != nil {
		return Entry{}, err
	}

	return s.repo.Create(ctx, Entry{
		Name:    strings.TrimSpace(in.Name),
		Kind:    in.Kind,
		Rate:    in.Rate,
		Section: strings.TrimSpace(in.Section),
		Status:  StatusActive,
	})
}

// GroupInput describes a TDS group combining existing catalog entries.
type GroupInput struct {
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"member_ids"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

// CreateGroup validates the whole input before touching the catalog and
// reports every violated rule at once. Members must all sit in section 195
// and there must be at least two of them. The group becomes one synthetic
// entry whose rate is the sum of its members' rates, with the combined rate
// embedded in the name.
func (s *Service) CreateGroup(ctx context.Context, in GroupInput) (Entry, error) {
	var violations []string
	if strings.TrimSpace(in.Name) == "" {
		violations = append(violations, "group name is required")
	}
	if strings.TrimSpace(in.StartDate) == "" {
		violations = append(violations, "start date is required")
	}
	if len(in.MemberIDs) < 2 {
		violations = append(violations, "a group needs at least 2 member rates")
	}

	var members []Entry
	if len(in.MemberIDs) > 0 {
		var err error
		members, err = s.repo.GetMany(ctx, in.MemberIDs)
		if err != nil {
			return Entry{}, err
		}
		if len(members) != len(in.MemberIDs) {
			violations = append(violations, "one or more member rates do not exist")
		}
		for _, m := range members {
			if !strings.Contains(m.Section, SectionForeignPayments) {
				violations = append(violations,
					fmt.Sprintf("member %q is not under %s; only %s rates can be grouped",
						m.Name, SectionForeignPayments, SectionForeignPayments))
			}
		}
	}

	if err := shared.NewValidationError(violations); err != nil {
		return Entry{}, err
	}

	combined := decimal.Zero
	for _, m := range members {
		combined = combined.Add(m.Rate)
	}

	return s.repo.Create(ctx, Entry{
		Name:      fmt.Sprintf("%s [%s%%]", strings.TrimSpace(in.Name), combined.String()),
		Kind:      KindTDS,
		Rate:      combined,
		Section:   SectionForeignPayments,
		Status:    StatusActive,
		IsGroup:   true,
		StartDate: strings.TrimSpace(in.StartDate),
		EndDate:   strings.TrimSpace(in.EndDate),
	})
}
