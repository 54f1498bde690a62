package market

import (
	"fmt"
	"strings"
	"time"
)

// Category buckets a ticker by market capitalization. Allocation
// targets, position caps and volatility factors are all keyed by it.
type Category string

const (
	LargeCap Category = "Large-cap"
	MidCap   Category = "Mid-cap"
	MicroCap Category = "Microcap"
)

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{LargeCap, MidCap, MicroCap}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case LargeCap, MidCap, MicroCap:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory maps common spellings ("large", "Large-cap", "LARGECAP")
// onto a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "_", "-"))) {
	case "large", "large-cap", "largecap":
		return LargeCap, nil
	case "mid", "mid-cap", "midcap":
		return MidCap, nil
	case "micro", "micro-cap", "microcap", "small", "small-cap":
		return MicroCap, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// DaysBetween counts whole calendar days from a to b, ignoring the time
// of day. Used for position age: a position entered yesterday evening
// has been held 1 day this morning.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	a0 := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	b0 := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(b0.Sub(a0).Hours() / 24)
}

// Day formats t as the store's canonical YYYY-MM-DD date string.
func Day(t time.Time) string { return t.Format("2006-01-02") }
