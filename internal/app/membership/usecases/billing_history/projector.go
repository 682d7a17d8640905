package billing_history

import (
	"fmt"
	"strings"
	"time"

	"github.com/complypoint/membership-billing/internal/app/membership/domain"
	"github.com/rs/zerolog"
)

// LedgerLine is one display-ready row of a member's billing history.
type LedgerLine struct {
	Amount      string // major currency units, e.g. "30.00"
	Currency    string // upper-case ISO code, e.g. "USD"
	Outcome     string // "Paid", "Failed" or "Pending"
	Description string
	ReceiptURL  string // empty when no receipt exists
	OccurredAt  time.Time
}

var outcomeLabels = map[domain.BillingOutcome]string{
	domain.OutcomePaid:    "Paid",
	domain.OutcomeFailed:  "Failed",
	domain.OutcomePending: "Pending",
}

// Project turns raw billing events into display lines. Malformed events are
// skipped and logged; one bad row must never block rendering the rest of the
// history.
func Project(events []domain.BillingEvent, log zerolog.Logger) []LedgerLine {
	lines := make([]LedgerLine, 0, len(events))
	for _, ev := range events {
		line, err := projectOne(ev)
		if err != nil {
			log.Warn().
				Err(err).
				Str("member_id", ev.MemberID).
				Str("provider_event_id", ev.ProviderEventID).
				Msg("skipping malformed billing event")
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func projectOne(ev domain.BillingEvent) (LedgerLine, error) {
	label, ok := outcomeLabels[ev.Outcome]
	if !ok {
		return LedgerLine{}, fmt.Errorf("unknown outcome %q", ev.Outcome)
	}
	if ev.AmountCents < 0 {
		return LedgerLine{}, fmt.Errorf("negative amount %d", ev.AmountCents)
	}
	if ev.Currency == "" {
		return LedgerLine{}, fmt.Errorf("missing currency")
	}
	if ev.OccurredAt.IsZero() {
		return LedgerLine{}, fmt.Errorf("missing timestamp")
	}

	return LedgerLine{
		Amount:      fmt.Sprintf("%d.%02d", ev.AmountCents/100, ev.AmountCents%100),
		Currency:    strings.ToUpper(ev.Currency),
		Outcome:     label,
		Description: ev.Description,
		ReceiptURL:  ev.ReceiptURL,
		OccurredAt:  ev.OccurredAt,
	}, nil
}
