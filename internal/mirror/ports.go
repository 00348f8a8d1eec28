package mirror

import (
	"context"

	"boutique/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerMirror keeps an external copy of the purchase ledger.
	// Append adds one row and returns an opaque reference to where it
	// landed; ReplaceMonth rewrites a whole month (YYYY-MM key) so the
	// mirror converges even when individual appends were missed.
	LedgerMirror interface {
		Append(ctx context.Context, rec core.PurchaseRecord) (rowRef string, err error)
		ReplaceMonth(ctx context.Context, month string, records []core.PurchaseRecord) error
	}
)
