package taxes

import (
	"context"

	"github.com/shopspring/decimal"
)

// defaultEntries is the catalog a fresh install starts with. Names follow the
// convention of embedding the rate in brackets so dropdowns stay unambiguous.
var defaultEntries = []Entry{
	{Name: "Commission or Brokerage [2%]", Kind: KindTDS, Rate: decimal.NewFromInt(2), Section: "Section 194 H"},
	{Name: "Commission or Brokerage (Reduced) [3.75%]", Kind: KindTDS, Rate: decimal.RequireFromString("3.75"), Section: "Section 194 H"},
	{Name: "Dividend [10%]", Kind: KindTDS, Rate: decimal.NewFromInt(10), Section: "Section 194"},
	{Name: "Dividend (Reduced) [7.5%]", Kind: KindTDS, Rate: decimal.RequireFromString("7.5"), Section: "Section 194"},
	{Name: "Professional Fees [10%]", Kind: KindTDS, Rate: decimal.NewFromInt(10), Section: "Section 194 J"},
	{Name: "Professional Fees (Reduced) [7.5%]", Kind: KindTDS, Rate: decimal.RequireFromString("7.5"), Section: "Section 194 J"},
	{Name: "Payment of contractors HUF/Indiv [1%]", Kind: KindTDS, Rate: decimal.NewFromInt(1), Section: "Section 194 C"},
	{Name: "Payment of contractors Others [2%]", Kind: KindTDS, Rate: decimal.NewFromInt(2), Section: "Section 194 C"},
	{Name: "Rent on land or furniture etc [10%]", Kind: KindTDS, Rate: decimal.NewFromInt(10), Section: "Section 194 I"},
	{Name: "Technical Fees (2%) [2%]", Kind: KindTDS, Rate: decimal.NewFromInt(2), Section: "Section 194 J"},
	{Name: "Other income to non-residents [20%]", Kind: KindTDS, Rate: decimal.NewFromInt(20), Section: SectionForeignPayments},
	{Name: "Income from foreign currency bonds [10%]", Kind: KindTDS, Rate: decimal.NewFromInt(10), Section: SectionForeignPayments},
	{Name: "Sale of goods [0.1%]", Kind: KindTCS, Rate: decimal.RequireFromString("0.1"), Section: "Section 206 C"},
	{Name: "Scrap [1%]", Kind: KindTCS, Rate: decimal.NewFromInt(1), Section: "Section 206 C"},
	{Name: "Timber [2.5%]", Kind: KindTCS, Rate: decimal.RequireFromString("2.5"), Section: "Section 206 C"},
}

// Seed inserts the default catalog into an empty installation. A non-empty
// catalog is left untouched so user edits survive restarts.
func Seed(ctx context.Context, repo Repository) error {
	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	for _, e := range defaultEntries {
		e.Status = StatusActive
		if _, err := repo.Create(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
