package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Color identifies a racer and the betting option belonging to it
type Color string

var (
	ErrInvalidOdds    = errors.New("invalid odds")
	ErrDuplicateColor = errors.New("duplicate color")
)

// NormalizeColor trims and lower-cases user input
func NormalizeColor(s string) Color {
	return Color(strings.ToLower(strings.TrimSpace(s)))
}

func (c Color) String() string {
	return string(c)
}

type OddsEntry struct {
	Color      Color
	Multiplier decimal.Decimal
}

// OddsTable maps colors to payout multipliers.
// The order of the entries is the racer iteration order and therefore
// the tie-break order for the race. An OddsTable is read-only once created.
type OddsTable struct {
	entries []OddsEntry
	lookup  map[Color]decimal.Decimal
}

// DefaultOdds returns the six colors of the classic game
func DefaultOdds() *OddsTable {
	ret, _ := NewOddsTable([]OddsEntry{
		{Color: "red", Multiplier: decimal.RequireFromString("1.5")},
		{Color: "blue", Multiplier: decimal.RequireFromString("2.0")},
		{Color: "green", Multiplier: decimal.RequireFromString("2.5")},
		{Color: "orange", Multiplier: decimal.RequireFromString("1.8")},
		{Color: "purple", Multiplier: decimal.RequireFromString("3.0")},
		{Color: "yellow", Multiplier: decimal.RequireFromString("1.2")},
	})
	return ret
}

// NewOddsTable validates the entries. Colors are normalized, must be unique
// and each multiplier must be greater than 1.
func NewOddsTable(entries []OddsEntry) (*OddsTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidOdds)
	}
	ret := &OddsTable{
		entries: make([]OddsEntry, 0, len(entries)),
		lookup:  make(map[Color]decimal.Decimal, len(entries)),
	}
	one := decimal.NewFromInt(1)
	for _, e := range entries {
		c := NormalizeColor(string(e.Color))
		if c == "" {
			return nil, fmt.Errorf("%w: empty color", ErrInvalidOdds)
		}
		if _, ok := ret.lookup[c]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColor, c)
		}
		if !e.Multiplier.GreaterThan(one) {
			return nil, fmt.Errorf("%w: multiplier for %s must be > 1, got %s",
				ErrInvalidOdds, c, e.Multiplier)
		}
		ret.entries = append(ret.entries, OddsEntry{Color: c, Multiplier: e.Multiplier})
		ret.lookup[c] = e.Multiplier
	}
	return ret, nil
}

// Colors returns the colors in table order
func (o *OddsTable) Colors() []Color {
	return lo.Map(o.entries, func(e OddsEntry, _ int) Color { return e.Color })
}

func (o *OddsTable) Entries() []OddsEntry {
	return append([]OddsEntry(nil), o.entries...)
}

func (o *OddsTable) Len() int {
	return len(o.entries)
}

func (o *OddsTable) Has(c Color) bool {
	_, ok := o.lookup[c]
	return ok
}

func (o *OddsTable) Multiplier(c Color) (decimal.Decimal, bool) {
	m, ok := o.lookup[c]
	return m, ok
}

// Index returns the position of c in table order or -1
func (o *OddsTable) Index(c Color) int {
	_, idx, ok := lo.FindIndexOf(o.entries, func(e OddsEntry) bool { return e.Color == c })
	if !ok {
		return -1
	}
	return idx
}

// Overround is the sum of the implied probabilities (1/multiplier)
func (o *OddsTable) Overround() decimal.Decimal {
	return lo.Reduce(o.entries, func(acc decimal.Decimal, e OddsEntry, _ int) decimal.Decimal {
		return acc.Add(ImpliedProbability(e.Multiplier))
	}, decimal.Zero)
}

func ImpliedProbability(multiplier decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).DivRound(multiplier, 4)
}

// FormatMultiplier shows at least one decimal place, like 2.0
func FormatMultiplier(d decimal.Decimal) string {
	return d.StringFixed(max(1, -d.Exponent()))
}
