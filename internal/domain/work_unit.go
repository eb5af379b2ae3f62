package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used in cache keys and cached values.
const DateLayout = "2006-01-02"

// KeySuffix terminates every delivery-info cache key.
const KeySuffix = "_delivery-info"

var ErrInvalidBillingDate = errors.New("invalid billing date")

// Represents one (billing date, delivery agent) pair to materialize into the cache.
// WorkUnits are produced fresh per run and never mutated after construction.
type WorkUnit struct {
	BillingDate time.Time
	AgentCode   string
}

// NewWorkUnit truncates the billing date to its calendar day so that two units
// for the same day compare equal regardless of the clock component.
func NewWorkUnit(billingDate time.Time, agentCode string) WorkUnit {
	y, m, d := billingDate.Date()
	return WorkUnit{
		BillingDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		AgentCode:   agentCode,
	}
}

// Date returns the billing date rendered as YYYY-MM-DD.
func (w WorkUnit) Date() string { return w.BillingDate.Format(DateLayout) }

// CacheKey returns the deterministic key "<YYYY-MM-DD>_<agent_code>_delivery-info".
func (w WorkUnit) CacheKey() string {
	return w.Date() + "_" + w.AgentCode + KeySuffix
}

func (w WorkUnit) String() string {
	return fmt.Sprintf("billing_date=%s da_code=%s", w.Date(), w.AgentCode)
}

// ParseBillingDate parses a YYYY-MM-DD string into a calendar date.
func ParseBillingDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidBillingDate, s, err)
	}
	return t, nil
}
