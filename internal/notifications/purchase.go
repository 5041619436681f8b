package notifications

import (
	"fmt"
	"strings"

	"github.com/smartdca/kraken-smart-dca/internal/regime"
	"github.com/smartdca/kraken-smart-dca/internal/triggers"
)

// PurchaseEvent carries everything a purchase alert shows, including
// the verdict that authorized the buy so the recipient can audit the
// indicator snapshot behind it.
type PurchaseEvent struct {
	Pair        string
	DryRun      bool
	Fallback    bool
	Regime      regime.Regime
	MassiveBear bool
	Price       float64
	Spend       float64
	Volume      float64
	TxID        string
	Verdict     triggers.Verdict
}

// FormatPurchase builds the purchase alert body.
func FormatPurchase(ev PurchaseEvent) string {
	var b strings.Builder

	kind := "Triggered purchase"
	if ev.Fallback {
		kind = "Fallback purchase (window expired)"
	}
	if ev.DryRun {
		kind += " [DRY RUN]"
	}

	regimeLabel := ev.Regime.String()
	if ev.MassiveBear {
		regimeLabel += " (massive)"
	}

	fmt.Fprintf(&b, "%s - %s\n", kind, ev.Pair)
	fmt.Fprintf(&b, "Rule: %s | Regime: %s\n", ev.Verdict.Rule, regimeLabel)
	fmt.Fprintf(&b, "Price: %.2f | Spend: %.2f | Volume: %.8f\n", ev.Price, ev.Spend, ev.Volume)
	if ev.TxID != "" {
		fmt.Fprintf(&b, "Order: %s\n", ev.TxID)
	}

	if len(ev.Verdict.Conditions) > 0 {
		b.WriteString("\nSignals:\n")
		for _, c := range ev.Verdict.Conditions {
			mark := "✗"
			if c.Met {
				mark = "✓"
			}
			fmt.Fprintf(&b, "  %s %s: %s\n", mark, c.Name, c.Detail)
		}
	}

	return b.String()
}
