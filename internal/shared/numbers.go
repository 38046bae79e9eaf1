package shared

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateNumber produces a document number with the given prefix, e.g.
// INV-20260115-1A2B3C. The random suffix comes from a UUID so numbers stay
// unique without coordinating a counter; the persisted unique index is the
// authoritative guard.
func GenerateNumber(prefix string) string {
	suffix := uuid.NewString()[:6]
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), suffix)
}
