// Package taxes manages the withholding tax catalog: named TDS/TCS rates a
// document can select, plus TDS groups that combine section 195 entries.
package taxes

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes tax deducted at source from tax collected at source.
type Kind string

const (
	KindTDS Kind = "tds"
	KindTCS Kind = "tcs"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// SectionForeignPayments is the only section whose entries may be combined
// into a TDS group.
const SectionForeignPayments = "Section 195"

// Entry is one selectable catalog entry. Documents copy the rate at selection
// time, so later edits here never change an already-selected document.
type Entry struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Kind      Kind            `json:"kind"`
	Rate      decimal.Decimal `json:"rate"`
	Section   string          `json:"section"`
	Status    string          `json:"status"`
	IsGroup   bool            `json:"is_group"`
	StartDate string          `json:"start_date,omitempty"`
	EndDate   string          `json:"end_date,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
