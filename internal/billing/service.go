package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/billing/calc"
	"github.com/finledger/finledger/internal/inventory"
	"github.com/finledger/finledger/internal/masterdata/items"
	"github.com/finledger/finledger/internal/masterdata/parties"
	"github.com/finledger/finledger/internal/shared"
	"github.com/finledger/finledger/internal/taxes"
)

// ItemCatalog resolves item references on document lines.
type ItemCatalog interface {
	Get(ctx context.Context, id int64) (items.Item, error)
}

// TaxCatalog resolves withholding tax entries at selection time.
type TaxCatalog interface {
	Get(ctx context.Context, id int64) (taxes.Entry, error)
}

// PartyCatalog resolves the vendor or customer a document references.
type PartyCatalog interface {
	Get(ctx context.Context, kind parties.Kind, id int64) (parties.Party, error)
}

// StockRecorder writes stock movements inside the confirmation transaction.
type StockRecorder interface {
	RecordInTx(ctx context.Context, tx pgx.Tx, m inventory.Movement) error
}

type Service struct {
	logger    *slog.Logger
	repo      Repository
	items     ItemCatalog
	taxes     TaxCatalog
	parties   PartyCatalog
	stock     StockRecorder
	validator *shared.Validator
	onConfirm func(d Document)
}

// SetConfirmHook registers a callback invoked after every successful
// confirmation, used for metrics and background PDF rendering.
func (s *Service) SetConfirmHook(fn func(d Document)) {
	s.onConfirm = fn
}

func NewService(logger *slog.Logger, repo Repository, itemCatalog ItemCatalog, taxCatalog TaxCatalog, partyCatalog PartyCatalog, stock StockRecorder, validator *shared.Validator) *Service {
	return &Service{
		logger:    logger,
		repo:      repo,
		items:     itemCatalog,
		taxes:     taxCatalog,
		parties:   partyCatalog,
		stock:     stock,
		validator: validator,
	}
}

// partyKindFor maps a document type to the party catalog it draws from.
func partyKindFor(t DocType) parties.Kind {
	if t == TypeInvoice {
		return parties.KindCustomer
	}
	return parties.KindVendor
}

// Create stores a new draft. Totals are computed server-side; whatever the
// client derived locally is ignored.
func (s *Service) Create(ctx context.Context, t DocType, form DocumentForm) (Document, error) {
	if t != TypeBill && t != TypeInvoice && t != TypeVendorCredit {
		return Document{}, fmt.Errorf("unknown document type %q: %w", t, shared.ErrValidation)
	}
	d, err := s.buildDocument(ctx, t, form)
	if err != nil {
		return Document{}, err
	}
	d.Status = StatusDraft
	return s.repo.Create(ctx, d)
}

// Update rewrites a draft. Confirmed and void documents are immutable; edits
// happen on a fresh draft, never in place.
func (s *Service) Update(ctx context.Context, id int64, form DocumentForm) (Document, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if existing.Status != StatusDraft {
		return Document{}, fmt.Errorf("document is %s: %w", existing.Status, shared.ErrInvalidState)
	}

	d, err := s.buildDocument(ctx, existing.Type, form)
	if err != nil {
		return Document{}, err
	}
	return s.repo.Replace(ctx, id, d)
}

func (s *Service) Get(ctx context.Context, id int64) (Document, error) {
	if id <= 0 {
		return Document{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Document, int, error) {
	return s.repo.List(ctx, filters)
}

// Confirm finalizes a draft: submission rules are checked all at once, a
// document number is assigned, and stock moves for every tracked item line in
// the same transaction.
func (s *Service) Confirm(ctx context.Context, id int64) (Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}

	number := shared.GenerateNumber(numberPrefix(doc.Type))
	confirmed, err := s.repo.Transition(ctx, id, StatusDraft, StatusConfirmed, number, func(tx pgx.Tx, d Document) error {
		if err := shared.NewValidationError(submissionViolations(d)); err != nil {
			return err
		}
		return s.moveStock(ctx, tx, d, number, 1)
	})
	if err != nil {
		return Document{}, err
	}
	if s.onConfirm != nil {
		s.onConfirm(confirmed)
	}
	s.logger.Info("document confirmed", "type", confirmed.Type, "number", confirmed.Number, "total", confirmed.Total)
	return confirmed, nil
}

// Void cancels a confirmed document and reverses its stock movements.
func (s *Service) Void(ctx context.Context, id int64) (Document, error) {
	voided, err := s.repo.Transition(ctx, id, StatusConfirmed, StatusVoid, "", func(tx pgx.Tx, d Document) error {
		return s.moveStock(ctx, tx, d, d.Number+" void", -1)
	})
	if err != nil {
		return Document{}, err
	}
	s.logger.Info("document voided", "type", voided.Type, "number", voided.Number)
	return voided, nil
}

// submissionViolations checks the rules a draft must satisfy before it can be
// confirmed. Every violated rule is reported, not just the first.
func submissionViolations(d Document) []string {
	var violations []string

	hasValidLine := false
	for _, l := range d.Lines {
		identified := l.ItemID > 0 || strings.TrimSpace(l.Name) != ""
		if identified && l.Quantity.IsPositive() {
			hasValidLine = true
			break
		}
	}
	if !hasValidLine {
		violations = append(violations, "at least one line must name an item and have a quantity above zero")
	}

	if d.PartyID <= 0 && strings.TrimSpace(d.PartyName) == "" {
		role := "customer"
		if partyKindFor(d.Type) == parties.KindVendor {
			role = "vendor"
		}
		violations = append(violations, "a "+role+" must be selected or named")
	}

	return violations
}

func (s *Service) moveStock(ctx context.Context, tx pgx.Tx, d Document, reference string, direction int64) error {
	sign := decimal.NewFromInt(int64(stockSign(d.Type)) * direction)
	reason := inventory.ReasonReceipt
	if sign.IsNegative() {
		reason = inventory.ReasonIssue
	}
	for _, l := range d.Lines {
		if l.ItemID <= 0 || !l.Quantity.IsPositive() {
			continue
		}
		err := s.stock.RecordInTx(ctx, tx, inventory.Movement{
			ItemID:    l.ItemID,
			Quantity:  l.Quantity.Mul(sign),
			Reason:    reason,
			Reference: reference,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// buildDocument validates the form, resolves item and tax references, and
// recomputes all derived amounts.
func (s *Service) buildDocument(ctx context.Context, t DocType, form DocumentForm) (Document, error) {
	if err := s.validator.Struct(form); err != nil {
		return Document{}, err
	}

	var violations []string
	if form.DiscountValue.IsNegative() {
		violations = append(violations, "discount_value must not be negative")
	}
	for i, lf := range form.Lines {
		if lf.Quantity.IsNegative() {
			violations = append(violations, fmt.Sprintf("line %d: quantity must not be negative", i+1))
		}
		if lf.UnitPrice.IsNegative() {
			violations = append(violations, fmt.Sprintf("line %d: unit_price must not be negative", i+1))
		}
		if lf.Discount.IsNegative() {
			violations = append(violations, fmt.Sprintf("line %d: discount must not be negative", i+1))
		}
	}
	if err := shared.NewValidationError(violations); err != nil {
		return Document{}, err
	}

	d := Document{
		Type:            t,
		PartyID:         form.PartyID,
		PartyName:       strings.TrimSpace(form.PartyName),
		IssueDate:       form.IssueDate,
		DueDate:         form.DueDate,
		DiscountType:    form.DiscountType,
		DiscountValue:   form.DiscountValue,
		WithholdingKind: form.WithholdingKind,
		TaxEntryID:      form.TaxEntryID,
		Adjustment:      form.Adjustment,
		Notes:           form.Notes,
	}
	if d.DiscountType == "" {
		d.DiscountType = calc.DiscountAmount
	}
	if d.WithholdingKind == "" {
		d.WithholdingKind = calc.WithholdingNone
	}
	if d.IssueDate.IsZero() {
		d.IssueDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	if d.PartyID > 0 {
		party, err := s.parties.Get(ctx, partyKindFor(t), d.PartyID)
		if err != nil {
			return Document{}, fmt.Errorf("party %d: %w", d.PartyID, err)
		}
		if d.PartyName == "" {
			d.PartyName = party.DisplayName
		}
	}

	// The withholding rate is copied from the catalog here and never
	// refreshed; later catalog edits leave this document unchanged.
	if d.WithholdingKind == calc.WithholdingNone {
		d.TaxEntryID = 0
		d.WithholdingRate = decimal.Zero
	} else if d.TaxEntryID > 0 {
		entry, err := s.taxes.Get(ctx, d.TaxEntryID)
		if err != nil {
			return Document{}, fmt.Errorf("tax entry %d: %w", d.TaxEntryID, err)
		}
		if string(entry.Kind) != string(d.WithholdingKind) {
			return Document{}, shared.NewValidationError([]string{
				fmt.Sprintf("tax entry %q is a %s rate, not %s", entry.Name, entry.Kind, d.WithholdingKind),
			})
		}
		d.WithholdingRate = entry.Rate
	}

	for _, lf := range form.Lines {
		line, err := s.buildLine(ctx, lf)
		if err != nil {
			return Document{}, err
		}
		d.Lines = append(d.Lines, line)
	}

	res := calc.Totals(calc.Input{
		Lines:           calcLines(d.Lines),
		DiscountType:    d.DiscountType,
		DiscountValue:   d.DiscountValue,
		Withholding:     d.WithholdingKind,
		WithholdingRate: d.WithholdingRate,
		Adjustment:      d.Adjustment,
	})
	d.Subtotal = res.Subtotal
	d.DiscountAmount = res.DiscountAmount
	d.TaxAmount = res.TaxAmount
	d.Total = res.Total
	return d, nil
}

// buildLine applies item defaults the way picking an item in a line does:
// blank fields are filled from the catalog, a zero quantity becomes one, and
// a user-entered quantity or price is never overwritten.
func (s *Service) buildLine(ctx context.Context, lf LineForm) (Line, error) {
	l := Line{
		ItemID:      lf.ItemID,
		Name:        strings.TrimSpace(lf.Name),
		Description: lf.Description,
		Quantity:    lf.Quantity,
		UnitPrice:   lf.UnitPrice,
		Discount:    lf.Discount,
		TaxRate:     lf.TaxRate,
	}

	if lf.ItemID > 0 {
		item, err := s.items.Get(ctx, lf.ItemID)
		if err != nil {
			return Line{}, fmt.Errorf("item %d: %w", lf.ItemID, err)
		}
		if l.Name == "" {
			l.Name = item.Name
		}
		if l.Description == "" {
			l.Description = item.Description
		}
		l.UOM = item.UOM
		if l.UnitPrice.IsZero() {
			l.UnitPrice = item.UnitPrice
		}
		if l.Quantity.IsZero() {
			l.Quantity = decimal.NewFromInt(1)
		}
		if item.TrackStock {
			l.Account = AccountInventoryAsset
		} else {
			l.Account = AccountCostOfGoodsSold
		}
	}

	l.LineTotal = calc.LineTotal(calc.Line{
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		Discount:  l.Discount,
		TaxRate:   l.TaxRate,
	})
	return l, nil
}

func calcLines(lines []Line) []calc.Line {
	out := make([]calc.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, calc.Line{
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			TaxRate:   l.TaxRate,
		})
	}
	return out
}
